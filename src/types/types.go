package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_AWAITING_PAYMENT      BookingStatus = "awaiting_payment"
	BOOKING_AWAITING_CONFIRMATION BookingStatus = "awaiting_confirmation"
	BOOKING_CONFIRMED             BookingStatus = "confirmed"
	BOOKING_CANCELED              BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BOOKING_AWAITING_PAYMENT, BOOKING_AWAITING_CONFIRMATION, BOOKING_CONFIRMED, BOOKING_CANCELED:
		return true
	}
	return false
}

// Active reports whether the booking holds its dates on the calendar.
// Every status except cancelled reserves the stay.
func (s BookingStatus) Active() bool {
	return s.Valid() && s != BOOKING_CANCELED
}

// CanTransition enforces the booking lifecycle: nothing leaves cancelled
// and nothing re-enters awaiting_payment.
func (s BookingStatus) CanTransition(to BookingStatus) bool {
	if !to.Valid() {
		return false
	}
	switch s {
	case BOOKING_AWAITING_PAYMENT:
		return to == BOOKING_AWAITING_CONFIRMATION || to == BOOKING_CANCELED
	case BOOKING_AWAITING_CONFIRMATION:
		return to == BOOKING_CONFIRMED || to == BOOKING_CANCELED
	case BOOKING_CONFIRMED:
		return to == BOOKING_CANCELED
	case BOOKING_CANCELED:
		return false
	}
	return false
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type SlugRequestParams struct {
	Slug string `uri:"slug" binding:"required"`
}

type LoginRequestBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreatePropertyRequestBody struct {
	Title         string   `json:"title" binding:"required"`
	Location      string   `json:"location" binding:"required"`
	Description   string   `json:"description,omitempty"`
	PricePerNight float64  `json:"price_per_night" binding:"required,gt=0"`
	Bedrooms      uint     `json:"bedrooms" binding:"required"`
	Bathrooms     uint     `json:"bathrooms" binding:"required"`
	MaxGuests     uint     `json:"max_guests" binding:"required"`
	CleaningFee   float64  `json:"cleaning_fee,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Featured      bool     `json:"featured,omitempty"`
}

type UpdatePropertyRequestBody struct {
	Title         *string  `json:"title,omitempty"`
	Location      *string  `json:"location,omitempty"`
	Description   *string  `json:"description,omitempty"`
	PricePerNight *float64 `json:"price_per_night,omitempty" binding:"omitempty,gt=0"`
	Bedrooms      *uint    `json:"bedrooms,omitempty"`
	Bathrooms     *uint    `json:"bathrooms,omitempty"`
	MaxGuests     *uint    `json:"max_guests,omitempty"`
	CleaningFee   *float64 `json:"cleaning_fee,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Featured      *bool    `json:"featured,omitempty"`
}

type CreateBookingRequestBody struct {
	PropertyID uint   `json:"property_id" binding:"required"`
	GuestName  string `json:"guest_name" binding:"required"`
	GuestEmail string `json:"guest_email" binding:"required,email"`
	GuestPhone string `json:"guest_phone" binding:"required"`
	CheckIn    string `json:"check_in" binding:"required,rentaldate"`
	CheckOut   string `json:"check_out" binding:"required,rentaldate,gtdate=CheckIn"`
	Guests     uint   `json:"guests" binding:"required,gt=0"`
}

type CleaningFeeRequestBody struct {
	CleaningFee *float64 `json:"cleaning_fee" binding:"required,gte=0"`
}

type AvailabilityQuery struct {
	CheckIn  string `form:"check_in" binding:"required"`
	CheckOut string `form:"check_out" binding:"required"`
}

type BlockDateRequestBody struct {
	Date   string `json:"date" binding:"required,rentaldate"`
	Reason string `json:"reason,omitempty"`
}

type BlockDateRangeRequestBody struct {
	Start  string `json:"start" binding:"required,rentaldate"`
	End    string `json:"end" binding:"required,rentaldate,gtedate=Start"`
	Reason string `json:"reason,omitempty"`
}

type BlockMultipleDatesRequestBody struct {
	Dates  []string `json:"dates" binding:"required,min=1,dive,rentaldate"`
	Reason string   `json:"reason,omitempty"`
}

type UnblockDateRequestBody struct {
	Date string `json:"date" binding:"required,rentaldate"`
}

type UnblockDateRangeRequestBody struct {
	Start string `json:"start" binding:"required,rentaldate"`
	End   string `json:"end" binding:"required,rentaldate,gtedate=Start"`
}

// AvailabilityResult is the no-throw boundary of the availability engine.
// On any data-access failure Available is false and Error carries the
// underlying message verbatim.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

type OccupiedByStatus struct {
	Confirmed       []string `json:"confirmed"`
	Pending         []string `json:"pending"`
	AwaitingPayment []string `json:"awaiting_payment"`
}

type OccupiedDatesResult struct {
	All      []string         `json:"all"`
	ByStatus OccupiedByStatus `json:"by_status"`
	Blocked  []string         `json:"blocked"`
	Error    string           `json:"error,omitempty"`
}

type BlockResult struct {
	Success      bool   `json:"success"`
	BlockedCount int    `json:"blocked_count,omitempty"`
	TotalCount   int    `json:"total_count,omitempty"`
	Error        string `json:"error,omitempty"`
}

type UnblockResult struct {
	Success        bool   `json:"success"`
	UnblockedCount int64  `json:"unblocked_count"`
	Error          string `json:"error,omitempty"`
}
