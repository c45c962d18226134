package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
	"vrbs/src/db"
	"vrbs/src/lib"
	awslib "vrbs/src/lib/aws"
	"vrbs/src/models"
	"vrbs/src/types"
	"vrbs/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const featuredCacheKey = "properties:featured"

func invalidateFeaturedCache() {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), featuredCacheKey).Err(); err != nil {
		log.Printf("[redis] Error invalidating featured cache: %s\n", err.Error())
	}
}

func propertyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/properties", func(ctx *gin.Context) {
			featured := ctx.Query("featured")
			location := ctx.Query("location")
			guests := ctx.Query("guests")

			// The featured strip on the landing page is the hottest read,
			// so that exact query is served from redis.
			cacheable := featured == "true" && location == "" && guests == ""
			if cacheable {
				if rd := lib.GetRedisClient(); rd != nil {
					cached := rd.Get(context.Background(), featuredCacheKey).Val()
					if cached != "" {
						var properties []models.Property
						if err := json.Unmarshal([]byte(cached), &properties); err == nil {
							ctx.JSON(http.StatusOK, gin.H{"data": properties, "count": len(properties)})
							return
						}
					}
				}
			}

			db := db.GetDb()
			query := db.
				Model(&models.Property{}).
				Preload("Images", func(db *gorm.DB) *gorm.DB {
					return db.Order("position asc")
				})
			if featured != "" {
				isFeatured, err := strconv.ParseBool(featured)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				query = query.Where("featured = ?", isFeatured)
			}
			if location != "" {
				query = query.Where("location ILIKE ?", fmt.Sprintf("%%%s%%", location))
			}
			if guests != "" {
				atoi, err := strconv.Atoi(guests)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				query = query.Where("max_guests >= ?", atoi)
			}
			var properties []models.Property
			if err := query.Order("created_at desc").Limit(100).Find(&properties).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if cacheable {
				if rd := lib.GetRedisClient(); rd != nil {
					if payload, err := json.Marshal(&properties); err == nil {
						if err := rd.Set(context.Background(), featuredCacheKey, payload, 10*time.Minute).Err(); err != nil {
							log.Printf("[redis] Error caching featured properties: %s\n", err.Error())
						}
					}
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": properties, "count": len(properties)})
		}).
		GET("/properties/:slug", func(ctx *gin.Context) {
			var params types.SlugRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var property models.Property
			if err := db.
				Model(&models.Property{}).
				Where(&models.Property{Slug: params.Slug}).
				Preload("Images", func(db *gorm.DB) *gorm.DB {
					return db.Order("position asc")
				}).
				First(&property).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": property})
		})
	return g
}

func adminPropertyHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/properties", func(ctx *gin.Context) {
			var body types.CreatePropertyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			amenities := types.JSONBArray{}
			for _, amenity := range body.Amenities {
				amenities = append(amenities, amenity)
			}
			property := models.Property{
				Title:         body.Title,
				Slug:          utils.UniqueSlug(db, body.Title),
				Location:      body.Location,
				Description:   &body.Description,
				PricePerNight: body.PricePerNight,
				Bedrooms:      body.Bedrooms,
				Bathrooms:     body.Bathrooms,
				MaxGuests:     body.MaxGuests,
				CleaningFee:   body.CleaningFee,
				Amenities:     amenities,
				Featured:      body.Featured,
			}
			if err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&property).Error
			}); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			invalidateFeaturedCache()
			utils.Audit(db, ctx.GetString("email"), "create", "property", property.ID, nil)
			ctx.JSON(http.StatusCreated, gin.H{"data": property})
		}).
		PUT("/properties/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdatePropertyRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			updates := map[string]any{}
			if body.Title != nil {
				updates["title"] = *body.Title
			}
			if body.Location != nil {
				updates["location"] = *body.Location
			}
			if body.Description != nil {
				updates["description"] = *body.Description
			}
			if body.PricePerNight != nil {
				updates["price_per_night"] = *body.PricePerNight
			}
			if body.Bedrooms != nil {
				updates["bedrooms"] = *body.Bedrooms
			}
			if body.Bathrooms != nil {
				updates["bathrooms"] = *body.Bathrooms
			}
			if body.MaxGuests != nil {
				updates["max_guests"] = *body.MaxGuests
			}
			if body.CleaningFee != nil {
				updates["cleaning_fee"] = *body.CleaningFee
			}
			if body.Featured != nil {
				updates["featured"] = *body.Featured
			}
			if body.Amenities != nil {
				amenities := types.JSONBArray{}
				for _, amenity := range body.Amenities {
					amenities = append(amenities, amenity)
				}
				updates["amenities"] = amenities
			}
			if err := db.Transaction(func(tx *gorm.DB) error {
				var count int64
				if err := tx.Model(&models.Property{}).Where("id = ?", params.ID).Count(&count).Error; err != nil {
					return err
				}
				if count == 0 {
					return gorm.ErrRecordNotFound
				}
				if len(updates) == 0 {
					return nil
				}
				return tx.Model(&models.Property{}).Where("id = ?", params.ID).Updates(updates).Error
			}); err != nil {
				if err == gorm.ErrRecordNotFound {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			invalidateFeaturedCache()
			utils.Audit(db, ctx.GetString("email"), "update", "property", params.ID, nil)
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/properties/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				var active int64
				if err := tx.
					Model(&models.Booking{}).
					Where("property_id = ?", params.ID).
					Where("status <> ?", types.BOOKING_CANCELED).
					Count(&active).
					Error; err != nil {
					return err
				}
				if active > 0 {
					return fmt.Errorf("property has %d active bookings", active)
				}
				if err := tx.Where("property_id = ?", params.ID).Delete(&models.PropertyImage{}).Error; err != nil {
					return err
				}
				if err := tx.Where("property_id = ?", params.ID).Delete(&models.BlockedDate{}).Error; err != nil {
					return err
				}
				return tx.Delete(&models.Property{}, params.ID).Error
			})
			if err != nil {
				log.Printf("Could not delete property [%d]: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			invalidateFeaturedCache()
			utils.Audit(db, ctx.GetString("email"), "delete", "property", params.ID, nil)
			ctx.Status(http.StatusNoContent)
		}).
		POST("/properties/:id/images", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
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
			key := fmt.Sprintf("properties/%d/%s", params.ID, uuid.NewString())
			contentType := file.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "image/jpeg"
			}
			if err := awslib.S3UploadObject(key, src, contentType); err != nil {
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not store image"})
				return
			}
			url, err := awslib.S3PresignURL(key)
			if err != nil {
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "could not store image"})
				return
			}
			db := db.GetDb()
			var image models.PropertyImage
			if err := db.Transaction(func(tx *gorm.DB) error {
				var position int64
				if err := tx.Model(&models.PropertyImage{}).Where("property_id = ?", params.ID).Count(&position).Error; err != nil {
					return err
				}
				image = models.PropertyImage{
					PropertyID: params.ID,
					URL:        *url,
					ObjectKey:  key,
					Position:   uint(position),
				}
				return tx.Create(&image).Error
			}); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": image})
		}).
		DELETE("/properties/:id/images/:imageId", func(ctx *gin.Context) {
			var params struct {
				ID      uint `uri:"id" binding:"required"`
				ImageID uint `uri:"imageId" binding:"required"`
			}
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var image models.PropertyImage
			if err := db.
				Where(&models.PropertyImage{ID: params.ImageID, PropertyID: params.ID}).
				First(&image).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			if err := db.Delete(&models.PropertyImage{}, image.ID).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			go func() {
				if err := awslib.S3DeleteObject(image.ObjectKey); err != nil {
					log.Printf("Could not remove object [%s]: %s\n", image.ObjectKey, err.Error())
				}
			}()
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/properties/:id/images/reorder", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body struct {
				ImageIDs []uint `json:"image_ids" binding:"required,min=1"`
			}
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				for position, imageID := range body.ImageIDs {
					if err := tx.
						Model(&models.PropertyImage{}).
						Where("id = ? AND property_id = ?", imageID, params.ID).
						Update("position", position).
						Error; err != nil {
						return err
					}
				}
				return nil
			}); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
