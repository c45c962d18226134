package common

import (
	"errors"
	"time"
	"vrbs/src/models"
	"vrbs/src/types"

	"gorm.io/gorm"
)

var (
	ErrInvalidProperty = errors.New("invalid property id")
	ErrInvalidDate     = errors.New("invalid date, expected yyyy-MM-dd")
)

// Engine answers availability questions for a single property from its
// bookings and blocked dates. It never panics across the boundary: every
// failure comes back inside the result with Available=false (fail closed).
type Engine struct {
	db *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// RangesOverlap is the three-way inclusive-interval test: a conflict exists
// when the requested check-in falls inside [bIn, bOut], the requested
// check-out falls inside [bIn, bOut], or [bIn, bOut] sits fully inside the
// requested span. Both ends count, so a shared turnover day conflicts.
func RangesOverlap(reqIn time.Time, reqOut time.Time, bIn time.Time, bOut time.Time) bool {
	if WithinInclusive(reqIn, bIn, bOut) {
		return true
	}
	if WithinInclusive(reqOut, bIn, bOut) {
		return true
	}
	return !bIn.Before(reqIn) && !bOut.After(reqOut)
}

func (e *Engine) activeBookings(propertyID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := e.db.
		Model(&models.Booking{}).
		Select("id", "check_in", "check_out", "status").
		Where("property_id = ?", propertyID).
		Where("status <> ?", types.BOOKING_CANCELED).
		Find(&bookings).
		Error
	return bookings, err
}

// CheckAvailability reports whether [checkIn, checkOut] is free of active
// bookings and admin blocks for the property.
func (e *Engine) CheckAvailability(propertyID uint, checkIn string, checkOut string) types.AvailabilityResult {
	if propertyID == 0 {
		return types.AvailabilityResult{Available: false, Error: ErrInvalidProperty.Error()}
	}
	in, err := ParseDate(checkIn)
	if err != nil {
		return types.AvailabilityResult{Available: false, Error: ErrInvalidDate.Error()}
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return types.AvailabilityResult{Available: false, Error: ErrInvalidDate.Error()}
	}

	bookings, err := e.activeBookings(propertyID)
	if err != nil {
		return types.AvailabilityResult{Available: false, Error: err.Error()}
	}
	for _, booking := range bookings {
		if !booking.Status.Active() {
			continue
		}
		if RangesOverlap(in, out, DateOnly(booking.CheckIn), DateOnly(booking.CheckOut)) {
			return types.AvailabilityResult{Available: false}
		}
	}

	var blocked int64
	err = e.db.
		Model(&models.BlockedDate{}).
		Where("property_id = ?", propertyID).
		Where("date BETWEEN ? AND ?", in, out).
		Count(&blocked).
		Error
	if err != nil {
		return types.AvailabilityResult{Available: false, Error: err.Error()}
	}
	if blocked > 0 {
		return types.AvailabilityResult{Available: false}
	}
	return types.AvailabilityResult{Available: true}
}

// OccupiedDates expands every active booking into its inclusive day
// sequence, bucketed by status, plus the flat blocked-date list. The "all"
// list is the union of every bucket and tolerates duplicates; callers only
// test membership.
func (e *Engine) OccupiedDates(propertyID uint) types.OccupiedDatesResult {
	result := types.OccupiedDatesResult{
		All:     []string{},
		Blocked: []string{},
		ByStatus: types.OccupiedByStatus{
			Confirmed:       []string{},
			Pending:         []string{},
			AwaitingPayment: []string{},
		},
	}
	if propertyID == 0 {
		result.Error = ErrInvalidProperty.Error()
		return result
	}

	bookings, err := e.activeBookings(propertyID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	for _, booking := range bookings {
		if !booking.Status.Active() {
			continue
		}
		for _, day := range DaysBetween(booking.CheckIn, booking.CheckOut) {
			formatted := FormatDate(day)
			switch booking.Status {
			case types.BOOKING_CONFIRMED:
				result.ByStatus.Confirmed = append(result.ByStatus.Confirmed, formatted)
			case types.BOOKING_AWAITING_CONFIRMATION:
				result.ByStatus.Pending = append(result.ByStatus.Pending, formatted)
			case types.BOOKING_AWAITING_PAYMENT:
				result.ByStatus.AwaitingPayment = append(result.ByStatus.AwaitingPayment, formatted)
			}
			result.All = append(result.All, formatted)
		}
	}

	var blockedDates []models.BlockedDate
	err = e.db.
		Model(&models.BlockedDate{}).
		Where("property_id = ?", propertyID).
		Order("date asc").
		Find(&blockedDates).
		Error
	if err != nil {
		result.Error = err.Error()
		return result
	}
	for _, blocked := range blockedDates {
		formatted := FormatDate(blocked.Date)
		result.Blocked = append(result.Blocked, formatted)
		result.All = append(result.All, formatted)
	}
	return result
}
