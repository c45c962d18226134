package utils

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
	"vrbs/src/common"
	"vrbs/src/lib/mailer"

	"vrbs/src/lib"
	"vrbs/src/models"
	"vrbs/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

func GenerateJWT(email string, userID uint, role string) (string, error) {
	claims := &types.Claims{
		Username: email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(int(userID)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

// Audit is a pass-through insert into the audit_logs table. Failures are
// logged and swallowed so auditing never fails the request that caused it.
func Audit(dbi *gorm.DB, actor string, action string, entity string, entityID uint, detail types.JSONB) {
	row := models.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := dbi.Create(&row).Error; err != nil {
		log.Printf("Error writing audit log [%s %s %d]: %s\n", action, entity, entityID, err.Error())
	}
}

// UniqueSlug derives a catalog slug from the title, suffixing a counter on
// collision.
func UniqueSlug(dbi *gorm.DB, title string) string {
	base := slug.Make(title)
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := dbi.
			Model(&models.Property{}).
			Where("slug = ?", candidate).
			Count(&count).
			Error; err != nil {
			log.Printf("Error checking slug [%s]: %s\n", candidate, err.Error())
			return fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
		}
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func NightsBetween(checkIn time.Time, checkOut time.Time) int {
	nights := int(common.DateOnly(checkOut).Sub(common.DateOnly(checkIn)).Hours() / 24)
	if nights < 0 {
		return 0
	}
	return nights
}

// CreateBooking validates and inserts a guest booking request inside a
// serializable transaction. The availability check re-runs inside the same
// transaction as the insert, so two concurrent requests for overlapping
// dates cannot both land.
func CreateBooking(dbi *gorm.DB, params *types.CreateBookingRequestBody) (*models.Booking, int, error) {
	in, err := common.ParseDate(params.CheckIn)
	if err != nil {
		return nil, http.StatusBadRequest, common.ErrInvalidDate
	}
	out, err := common.ParseDate(params.CheckOut)
	if err != nil {
		return nil, http.StatusBadRequest, common.ErrInvalidDate
	}
	if !out.After(in) {
		return nil, http.StatusBadRequest, errors.New("check_out must be after check_in")
	}

	var booking models.Booking
	tx := dbi.Begin(&sql.TxOptions{Isolation: sql.LevelSerializable})
	if tx.Error != nil {
		return nil, http.StatusServiceUnavailable, tx.Error
	}

	var property models.Property
	if err := tx.
		Model(&models.Property{}).
		Where(&models.Property{ID: params.PropertyID}).
		First(&property).
		Error; err != nil {
		tx.Rollback()
		return nil, http.StatusNotFound, errors.New("property not found")
	}
	if property.MaxGuests > 0 && params.Guests > property.MaxGuests {
		tx.Rollback()
		return nil, http.StatusBadRequest, fmt.Errorf("property sleeps at most %d guests", property.MaxGuests)
	}

	res := common.NewEngine(tx).CheckAvailability(params.PropertyID, params.CheckIn, params.CheckOut)
	if res.Error != "" {
		tx.Rollback()
		return nil, http.StatusUnprocessableEntity, errors.New(res.Error)
	}
	if !res.Available {
		tx.Rollback()
		return nil, http.StatusConflict, errors.New("the selected dates are no longer available")
	}

	nights := NightsBetween(in, out)
	basePrice := float64(nights) * property.PricePerNight
	booking = models.Booking{
		Code:        uuid.NewString(),
		PropertyID:  property.ID,
		GuestName:   params.GuestName,
		GuestEmail:  params.GuestEmail,
		GuestPhone:  params.GuestPhone,
		CheckIn:     in,
		CheckOut:    out,
		Guests:      params.Guests,
		BasePrice:   basePrice,
		CleaningFee: property.CleaningFee,
		TotalPrice:  basePrice + property.CleaningFee,
		Status:      types.BOOKING_AWAITING_PAYMENT,
	}
	if err := tx.Create(&booking).Error; err != nil {
		tx.Rollback()
		return nil, http.StatusConflict, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, http.StatusConflict, err
	}

	common.InvalidateOccupiedCache(property.ID)
	Audit(dbi, params.GuestEmail, "create", "booking", booking.ID, types.JSONB{
		"check_in":  params.CheckIn,
		"check_out": params.CheckOut,
	})
	if err := mailer.NewMailerMessage(&lib.SendMailInput{
		From:     os.Getenv("SMTP_FROM"),
		FromName: "noreply",
		To:       []string{params.GuestEmail},
		Subject:  "Booking request received",
		Body: fmt.Sprintf("We received your booking request for %s (%s to %s). Reference: %s. Please upload your payment proof to continue.",
			property.Title, params.CheckIn, params.CheckOut, booking.Code),
	}); err != nil {
		log.Printf("Could not send booking email to [%s]: %s\n", params.GuestEmail, err.Error())
	}
	return &booking, http.StatusCreated, nil
}

// UpdateBookingStatus applies one lifecycle transition, rejecting anything
// the matrix forbids.
func UpdateBookingStatus(dbi *gorm.DB, id uint, to types.BookingStatus, actor string) (*models.Booking, error) {
	var booking models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", id).
			First(&booking).
			Error; err != nil {
			return err
		}
		if !booking.Status.CanTransition(to) {
			return fmt.Errorf("cannot transition booking from %s to %s", booking.Status, to)
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", id).
			Update("status", to).
			Error; err != nil {
			return err
		}
		booking.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	common.InvalidateOccupiedCache(booking.PropertyID)
	Audit(dbi, actor, "status:"+string(to), "booking", booking.ID, nil)

	subject := ""
	switch to {
	case types.BOOKING_CONFIRMED:
		subject = "Your booking is confirmed"
	case types.BOOKING_CANCELED:
		subject = "Your booking was cancelled"
	case types.BOOKING_AWAITING_CONFIRMATION, types.BOOKING_AWAITING_PAYMENT:
	}
	if subject != "" {
		if err := mailer.NewMailerMessage(&lib.SendMailInput{
			From:     os.Getenv("SMTP_FROM"),
			FromName: "noreply",
			To:       []string{booking.GuestEmail},
			Subject:  subject,
			Body:     fmt.Sprintf("Booking %s is now %s.", booking.Code, to),
		}); err != nil {
			log.Printf("Could not send status email to [%s]: %s\n", booking.GuestEmail, err.Error())
		}
	}
	return &booking, nil
}

// UpdateCleaningFee stores the new fee and recomputes the total so the
// total = base + cleaning fee invariant holds.
func UpdateCleaningFee(dbi *gorm.DB, id uint, fee float64) (*models.Booking, error) {
	var booking models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", id).
			First(&booking).
			Error; err != nil {
			return err
		}
		booking.CleaningFee = fee
		booking.TotalPrice = booking.BasePrice + fee
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"cleaning_fee": booking.CleaningFee,
				"total_price":  booking.TotalPrice,
			}).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// AttachPaymentProof records the uploaded proof and moves a fresh booking
// to awaiting_confirmation. Re-uploading on an awaiting_confirmation
// booking replaces the proof without another transition.
func AttachPaymentProof(dbi *gorm.DB, code string, key string) (*models.Booking, error) {
	var booking models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{Code: code}).
			First(&booking).
			Error; err != nil {
			return err
		}
		updates := map[string]any{"payment_proof_key": key}
		if booking.Status == types.BOOKING_AWAITING_PAYMENT {
			if !booking.Status.CanTransition(types.BOOKING_AWAITING_CONFIRMATION) {
				return fmt.Errorf("cannot transition booking from %s to %s", booking.Status, types.BOOKING_AWAITING_CONFIRMATION)
			}
			updates["status"] = types.BOOKING_AWAITING_CONFIRMATION
			booking.Status = types.BOOKING_AWAITING_CONFIRMATION
		} else if booking.Status != types.BOOKING_AWAITING_CONFIRMATION {
			return fmt.Errorf("booking in status %s does not accept payment proof", booking.Status)
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Updates(updates).
			Error; err != nil {
			return err
		}
		booking.PaymentProofKey = &key
		return nil
	})
	if err != nil {
		return nil, err
	}
	Audit(dbi, booking.GuestEmail, "payment_proof", "booking", booking.ID, nil)
	return &booking, nil
}

// AddIdentityDocs appends uploaded identity-document keys to the booking.
func AddIdentityDocs(dbi *gorm.DB, code string, keys []string) (*models.Booking, error) {
	var booking models.Booking
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{Code: code}).
			First(&booking).
			Error; err != nil {
			return err
		}
		docs := booking.IdentityDocKeys
		for _, key := range keys {
			docs = append(docs, key)
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", booking.ID).
			Update("identity_doc_keys", docs).
			Error; err != nil {
			return err
		}
		booking.IdentityDocKeys = docs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
