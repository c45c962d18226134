package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
	"vrbs/src/common"
	"vrbs/src/db"
	"vrbs/src/lib"
	"vrbs/src/models"
	"vrbs/src/types"
	"vrbs/src/utils"

	"github.com/gin-gonic/gin"
)

// blockStatusCode maps an engine or workflow error message to an HTTP
// status. Bad input is 400, calendar conflicts are 409 and anything else
// is a data-access failure.
func blockStatusCode(msg string) int {
	switch msg {
	case common.ErrInvalidProperty.Error(), common.ErrInvalidDate.Error():
		return http.StatusBadRequest
	case common.ErrDuplicateBlock.Error(), common.ErrDateHasBooking.Error(), common.ErrRangeConflict.Error():
		return http.StatusConflict
	}
	return http.StatusUnprocessableEntity
}

func propertyIDBySlug(ctx *gin.Context) (uint, bool) {
	var params types.SlugRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return 0, false
	}
	db := db.GetDb()
	var property models.Property
	if err := db.
		Model(&models.Property{}).
		Select("id").
		Where(&models.Property{Slug: params.Slug}).
		First(&property).
		Error; err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return 0, false
	}
	return property.ID, true
}

func calendarHandlers(g *gin.RouterGroup, engine *common.Engine) *gin.RouterGroup {
	g.
		GET("/properties/:slug/availability", func(ctx *gin.Context) {
			var query types.AvailabilityQuery
			if err := ctx.ShouldBindQuery(&query); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			propertyID, ok := propertyIDBySlug(ctx)
			if !ok {
				return
			}
			res := engine.CheckAvailability(propertyID, query.CheckIn, query.CheckOut)
			ctx.JSON(http.StatusOK, res)
		}).
		GET("/properties/:slug/occupied-dates", func(ctx *gin.Context) {
			propertyID, ok := propertyIDBySlug(ctx)
			if !ok {
				return
			}
			rd := lib.GetRedisClient()
			if rd != nil {
				cached, err := rd.Get(context.Background(), common.OccupiedCacheKey(propertyID)).Result()
				if err == nil {
					var res types.OccupiedDatesResult
					if err := json.Unmarshal([]byte(cached), &res); err == nil {
						ctx.JSON(http.StatusOK, res)
						return
					}
				}
			}
			res := engine.OccupiedDates(propertyID)
			if res.Error != "" {
				ctx.JSON(http.StatusUnprocessableEntity, res)
				return
			}
			if rd != nil {
				if payload, err := json.Marshal(&res); err == nil {
					if err := rd.Set(context.Background(), common.OccupiedCacheKey(propertyID), payload, 24*time.Hour).Err(); err != nil {
						log.Printf("[redis] Error caching occupied dates for property [%d]: %s\n", propertyID, err.Error())
					}
				}
			}
			ctx.JSON(http.StatusOK, res)
		})
	return g
}

func adminCalendarHandlers(g *gin.RouterGroup, engine *common.Engine, blocks *common.BlockingWorkflow) *gin.RouterGroup {
	g.
		GET("/properties/:id/occupied-dates", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			res := engine.OccupiedDates(params.ID)
			if res.Error != "" {
				ctx.JSON(http.StatusUnprocessableEntity, res)
				return
			}
			ctx.JSON(http.StatusOK, res)
		}).
		POST("/properties/:id/blocked-dates", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.BlockDateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := blocks.BlockDate(params.ID, body.Date, body.Reason)
			if !res.Success {
				ctx.JSON(blockStatusCode(res.Error), res)
				return
			}
			utils.Audit(db.GetDb(), ctx.GetString("email"), "block", "property", params.ID, types.JSONB{"date": body.Date})
			ctx.JSON(http.StatusCreated, res)
		}).
		POST("/properties/:id/blocked-dates/range", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.BlockDateRangeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := blocks.BlockDateRange(params.ID, body.Start, body.End, body.Reason)
			if !res.Success {
				ctx.JSON(blockStatusCode(res.Error), res)
				return
			}
			utils.Audit(db.GetDb(), ctx.GetString("email"), "block_range", "property", params.ID, types.JSONB{
				"start": body.Start,
				"end":   body.End,
			})
			ctx.JSON(http.StatusCreated, res)
		}).
		POST("/properties/:id/blocked-dates/batch", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.BlockMultipleDatesRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := blocks.BlockMultipleDates(params.ID, body.Dates, body.Reason)
			if !res.Success {
				ctx.JSON(blockStatusCode(res.Error), res)
				return
			}
			utils.Audit(db.GetDb(), ctx.GetString("email"), "block_batch", "property", params.ID, types.JSONB{
				"requested": res.TotalCount,
				"blocked":   res.BlockedCount,
			})
			ctx.JSON(http.StatusOK, res)
		}).
		DELETE("/properties/:id/blocked-dates", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UnblockDateRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := blocks.UnblockDate(params.ID, body.Date)
			if !res.Success {
				ctx.JSON(blockStatusCode(res.Error), res)
				return
			}
			utils.Audit(db.GetDb(), ctx.GetString("email"), "unblock", "property", params.ID, types.JSONB{"date": body.Date})
			ctx.JSON(http.StatusOK, res)
		}).
		DELETE("/properties/:id/blocked-dates/range", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UnblockDateRangeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			res := blocks.UnblockDateRange(params.ID, body.Start, body.End)
			if !res.Success {
				ctx.JSON(blockStatusCode(res.Error), res)
				return
			}
			utils.Audit(db.GetDb(), ctx.GetString("email"), "unblock_range", "property", params.ID, types.JSONB{
				"start": body.Start,
				"end":   body.End,
			})
			ctx.JSON(http.StatusOK, res)
		})
	return g
}
