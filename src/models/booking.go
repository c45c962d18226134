package models

import (
	"time"
	"vrbs/src/types"
)

type Booking struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	Code        string              `gorm:"uniqueIndex" json:"code,omitempty"`
	PropertyID  uint                `json:"property_id,omitempty"`
	GuestName   string              `json:"guest_name,omitempty"`
	GuestEmail  string              `json:"guest_email,omitempty"`
	GuestPhone  string              `json:"guest_phone,omitempty"`
	CheckIn     time.Time           `gorm:"type:date" json:"check_in,omitempty"`
	CheckOut    time.Time           `gorm:"type:date" json:"check_out,omitempty"`
	Guests      uint                `json:"guests,omitempty"`
	BasePrice   float64             `json:"base_price,omitempty"`
	CleaningFee float64             `json:"cleaning_fee,omitempty"`
	TotalPrice  float64             `json:"total_price,omitempty"`
	Status      types.BookingStatus `gorm:"default:'awaiting_payment'" json:"status,omitempty"`

	PaymentProofKey *string          `json:"-"`
	IdentityDocKeys types.JSONBArray `gorm:"type:jsonb" json:"-"`

	Property *Property `gorm:"foreignKey:property_id" json:"property,omitempty"`

	types.Timestamps
}
