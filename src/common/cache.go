package common

import (
	"context"
	"fmt"
	"log"
	"vrbs/src/lib"
)

func OccupiedCacheKey(propertyID uint) string {
	return fmt.Sprintf("property:%d:occupied", propertyID)
}

// InvalidateOccupiedCache drops the cached occupied-dates payload after a
// booking or calendar mutation. Best effort; a cold cache is repopulated on
// the next read.
func InvalidateOccupiedCache(propertyID uint) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), OccupiedCacheKey(propertyID)).Err(); err != nil {
		log.Printf("[redis] Error invalidating occupied cache for property [%d]: %s\n", propertyID, err.Error())
	}
}
