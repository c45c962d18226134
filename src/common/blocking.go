package common

import (
	"errors"
	"time"
	"vrbs/src/config"
	"vrbs/src/models"
	"vrbs/src/types"

	"gorm.io/gorm"
)

var (
	ErrDuplicateBlock = errors.New("date is already blocked")
	ErrDateHasBooking = errors.New("date has an existing booking")
	ErrRangeConflict  = errors.New("one or more dates in the range are not available")
)

// BlockingWorkflow runs the admin calendar mutations. Range blocks are
// all-or-nothing; explicit date lists are best-effort with conflict counts;
// unblocks are idempotent.
type BlockingWorkflow struct {
	db     *gorm.DB
	engine *Engine
}

func NewBlockingWorkflow(db *gorm.DB) *BlockingWorkflow {
	return &BlockingWorkflow{db: db, engine: NewEngine(db)}
}

func blockReason(reason string) string {
	if reason == "" {
		return config.DEFAULT_BLOCK_REASON
	}
	return reason
}

// dayConflict probes a single day for an existing block or an active
// booking covering it.
func (w *BlockingWorkflow) dayConflict(propertyID uint, day time.Time) (conflict error, err error) {
	var existing int64
	err = w.db.
		Model(&models.BlockedDate{}).
		Where("property_id = ?", propertyID).
		Where("date = ?", day).
		Count(&existing).
		Error
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return ErrDuplicateBlock, nil
	}
	bookings, err := w.engine.activeBookings(propertyID)
	if err != nil {
		return nil, err
	}
	for _, booking := range bookings {
		if WithinInclusive(day, booking.CheckIn, booking.CheckOut) {
			return ErrDateHasBooking, nil
		}
	}
	return nil, nil
}

func (w *BlockingWorkflow) BlockDate(propertyID uint, date string, reason string) types.BlockResult {
	if propertyID == 0 {
		return types.BlockResult{Success: false, Error: ErrInvalidProperty.Error()}
	}
	day, err := ParseDate(date)
	if err != nil {
		return types.BlockResult{Success: false, Error: ErrInvalidDate.Error()}
	}
	conflict, err := w.dayConflict(propertyID, day)
	if err != nil {
		return types.BlockResult{Success: false, Error: err.Error()}
	}
	if conflict != nil {
		return types.BlockResult{Success: false, Error: conflict.Error()}
	}
	row := models.BlockedDate{
		PropertyID: propertyID,
		Date:       day,
		Reason:     blockReason(reason),
	}
	if err := w.db.Create(&row).Error; err != nil {
		return types.BlockResult{Success: false, Error: err.Error()}
	}
	InvalidateOccupiedCache(propertyID)
	return types.BlockResult{Success: true, BlockedCount: 1, TotalCount: 1}
}

// BlockDateRange blocks every day in [start, end] or nothing at all. The
// availability check runs first so a single conflicting day rejects the
// whole range with the message the check produced.
func (w *BlockingWorkflow) BlockDateRange(propertyID uint, start string, end string, reason string) types.BlockResult {
	res := w.engine.CheckAvailability(propertyID, start, end)
	if !res.Available {
		msg := res.Error
		if msg == "" {
			msg = ErrRangeConflict.Error()
		}
		return types.BlockResult{Success: false, Error: msg}
	}
	from, err := ParseDate(start)
	if err != nil {
		return types.BlockResult{Success: false, Error: ErrInvalidDate.Error()}
	}
	to, err := ParseDate(end)
	if err != nil {
		return types.BlockResult{Success: false, Error: ErrInvalidDate.Error()}
	}
	days := DaysBetween(from, to)
	rows := make([]models.BlockedDate, 0, len(days))
	for _, day := range days {
		rows = append(rows, models.BlockedDate{
			PropertyID: propertyID,
			Date:       day,
			Reason:     blockReason(reason),
		})
	}
	if err := w.db.Create(&rows).Error; err != nil {
		return types.BlockResult{Success: false, Error: err.Error()}
	}
	InvalidateOccupiedCache(propertyID)
	return types.BlockResult{Success: true, BlockedCount: len(rows), TotalCount: len(rows)}
}

// BlockMultipleDates probes each candidate day individually, silently
// drops the ones already blocked or booked and inserts the rest in one
// batch. The counts report how many of the requested days actually landed.
func (w *BlockingWorkflow) BlockMultipleDates(propertyID uint, dates []string, reason string) types.BlockResult {
	if propertyID == 0 {
		return types.BlockResult{Success: false, Error: ErrInvalidProperty.Error()}
	}
	days := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		day, err := ParseDate(date)
		if err != nil {
			return types.BlockResult{Success: false, Error: ErrInvalidDate.Error()}
		}
		days = append(days, day)
	}
	rows := make([]models.BlockedDate, 0, len(days))
	for _, day := range days {
		conflict, err := w.dayConflict(propertyID, day)
		if err != nil {
			return types.BlockResult{Success: false, Error: err.Error()}
		}
		if conflict != nil {
			continue
		}
		rows = append(rows, models.BlockedDate{
			PropertyID: propertyID,
			Date:       day,
			Reason:     blockReason(reason),
		})
	}
	if len(rows) > 0 {
		if err := w.db.Create(&rows).Error; err != nil {
			return types.BlockResult{Success: false, Error: err.Error()}
		}
		InvalidateOccupiedCache(propertyID)
	}
	return types.BlockResult{Success: true, BlockedCount: len(rows), TotalCount: len(dates)}
}

// UnblockDate removes the block on a single day. Deleting a day that was
// never blocked is a no-op, not an error.
func (w *BlockingWorkflow) UnblockDate(propertyID uint, date string) types.UnblockResult {
	if propertyID == 0 {
		return types.UnblockResult{Success: false, Error: ErrInvalidProperty.Error()}
	}
	day, err := ParseDate(date)
	if err != nil {
		return types.UnblockResult{Success: false, Error: ErrInvalidDate.Error()}
	}
	res := w.db.
		Where("property_id = ?", propertyID).
		Where("date = ?", day).
		Delete(&models.BlockedDate{})
	if res.Error != nil {
		return types.UnblockResult{Success: false, Error: res.Error.Error()}
	}
	if res.RowsAffected > 0 {
		InvalidateOccupiedCache(propertyID)
	}
	return types.UnblockResult{Success: true, UnblockedCount: res.RowsAffected}
}

func (w *BlockingWorkflow) UnblockDateRange(propertyID uint, start string, end string) types.UnblockResult {
	if propertyID == 0 {
		return types.UnblockResult{Success: false, Error: ErrInvalidProperty.Error()}
	}
	from, err := ParseDate(start)
	if err != nil {
		return types.UnblockResult{Success: false, Error: ErrInvalidDate.Error()}
	}
	to, err := ParseDate(end)
	if err != nil {
		return types.UnblockResult{Success: false, Error: ErrInvalidDate.Error()}
	}
	res := w.db.
		Where("property_id = ?", propertyID).
		Where("date BETWEEN ? AND ?", from, to).
		Delete(&models.BlockedDate{})
	if res.Error != nil {
		return types.UnblockResult{Success: false, Error: res.Error.Error()}
	}
	if res.RowsAffected > 0 {
		InvalidateOccupiedCache(propertyID)
	}
	return types.UnblockResult{Success: true, UnblockedCount: res.RowsAffected}
}
