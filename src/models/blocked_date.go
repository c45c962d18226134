package models

import (
	"time"
)

// BlockedDate is an admin-imposed unavailability on a single calendar day,
// independent of bookings. One row per (property, day). No soft delete
// here: unblocking must actually free the unique (property, date) slot.
type BlockedDate struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PropertyID uint      `gorm:"uniqueIndex:idx_blocked_property_date" json:"property_id,omitempty"`
	Date       time.Time `gorm:"type:date;uniqueIndex:idx_blocked_property_date" json:"date,omitempty"`
	Reason     string    `json:"reason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}
