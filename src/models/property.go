package models

import "vrbs/src/types"

type Property struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	Title         string           `json:"title,omitempty"`
	Slug          string           `gorm:"uniqueIndex" json:"slug,omitempty"`
	Location      string           `json:"location,omitempty"`
	Description   *string          `json:"description,omitempty"`
	PricePerNight float64          `json:"price_per_night,omitempty"`
	Bedrooms      uint             `json:"bedrooms,omitempty"`
	Bathrooms     uint             `json:"bathrooms,omitempty"`
	MaxGuests     uint             `json:"max_guests,omitempty"`
	CleaningFee   float64          `json:"cleaning_fee,omitempty"`
	Amenities     types.JSONBArray `gorm:"type:jsonb" json:"amenities,omitempty"`
	Featured      bool             `json:"featured,omitempty"`

	Images       []PropertyImage `gorm:"constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Bookings     []Booking       `json:"bookings,omitempty"`
	BlockedDates []BlockedDate   `gorm:"constraint:OnDelete:CASCADE" json:"blocked_dates,omitempty"`

	types.Timestamps
}

type PropertyImage struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	PropertyID uint   `json:"property_id,omitempty"`
	URL        string `json:"url,omitempty"`
	ObjectKey  string `json:"-"`
	Position   uint   `json:"position"`

	types.Timestamps
}
