package main

import (
	"fmt"
	"log"
	"net/http"
	"vrbs/src/db"
	awslib "vrbs/src/lib/aws"
	"vrbs/src/models"
	"vrbs/src/types"
	"vrbs/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, status, err := utils.CreateBooking(db.GetDb(), &body)
			if err != nil {
				ctx.JSON(status, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(status, gin.H{"data": booking})
		}).
		GET("/bookings/:code", func(ctx *gin.Context) {
			code := ctx.Param("code")
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{Code: code}).
				Preload("Property").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings/:code/payment-proof", func(ctx *gin.Context) {
			code := ctx.Param("code")
			file, err := ctx.FormFile("file")
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			src, err := file.Open()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			defer src.Close()
			key := fmt.Sprintf("bookings/%s/payment-proof/%s", code, uuid.NewString())
			contentType := file.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			if err := awslib.S3UploadObject(key, src, contentType); err != nil {
				log.Printf("Could not upload payment proof for booking [%s]: %s\n", code, err.Error())
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not store upload"})
				return
			}
			booking, err := utils.AttachPaymentProof(db.GetDb(), code, key)
			if err != nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings/:code/documents", func(ctx *gin.Context) {
			code := ctx.Param("code")
			form, err := ctx.MultipartForm()
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			files := form.File["files"]
			if len(files) == 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "no files in request"})
				return
			}
			keys := []string{}
			for _, file := range files {
				src, err := file.Open()
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				key := fmt.Sprintf("bookings/%s/documents/%s", code, uuid.NewString())
				contentType := file.Header.Get("Content-Type")
				if contentType == "" {
					contentType = "application/octet-stream"
				}
				err = awslib.S3UploadObject(key, src, contentType)
				src.Close()
				if err != nil {
					log.Printf("Could not upload document for booking [%s]: %s\n", code, err.Error())
					ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not store upload"})
					return
				}
				keys = append(keys, key)
			}
			booking, err := utils.AddIdentityDocs(db.GetDb(), code, keys)
			if err != nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking, "uploaded": len(keys)})
		})
	return g
}

func adminBookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			db := db.GetDb()
			query := db.
				Model(&models.Booking{}).
				Preload("Property")
			if status := ctx.Query("status"); status != "" {
				if !types.BookingStatus(status).Valid() {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
					return
				}
				query = query.Where("status = ?", status)
			}
			if propertyID := ctx.Query("property_id"); propertyID != "" {
				query = query.Where("property_id = ?", propertyID)
			}
			var bookings []models.Booking
			if err := query.Order("created_at desc").Limit(200).Find(&bookings).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Preload("Property").
				First(&booking, params.ID).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			data := gin.H{"data": booking}
			if booking.PaymentProofKey != nil {
				if url, err := awslib.S3PresignURL(*booking.PaymentProofKey); err == nil {
					data["payment_proof_url"] = url
				}
			}
			if len(booking.IdentityDocKeys) > 0 {
				urls := []string{}
				for _, raw := range booking.IdentityDocKeys {
					key, ok := raw.(string)
					if !ok {
						continue
					}
					if url, err := awslib.S3PresignURL(key); err == nil {
						urls = append(urls, *url)
					}
				}
				data["document_urls"] = urls
			}
			ctx.JSON(http.StatusOK, data)
		}).
		POST("/bookings/:id/confirm", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, err := utils.UpdateBookingStatus(db.GetDb(), params.ID, types.BOOKING_CONFIRMED, ctx.GetString("email"))
			if err != nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			booking, err := utils.UpdateBookingStatus(db.GetDb(), params.ID, types.BOOKING_CANCELED, ctx.GetString("email"))
			if err != nil {
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		PATCH("/bookings/:id/cleaning-fee", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.CleaningFeeRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, err := utils.UpdateCleaningFee(db.GetDb(), params.ID, *body.CleaningFee)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			utils.Audit(db.GetDb(), ctx.GetString("email"), "cleaning_fee", "booking", booking.ID, types.JSONB{"cleaning_fee": *body.CleaningFee})
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
