package controllers

import (
	"errors"
	"log"
	"net/http"
	"time"
	"vrbs/src/db"
	"vrbs/src/models"
	"vrbs/src/types"
	"vrbs/src/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthLogin exchanges admin credentials for a JWT. The same generic error
// comes back for a missing user and a bad password.
func AuthLogin(ctx *gin.Context) (token *string, status int, err error) {
	var body types.LoginRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, http.StatusBadRequest, err
	}
	invalid := errors.New("invalid email or password")

	dbi := db.GetDb()
	var user models.User
	if err = dbi.
		Model(&models.User{}).
		Where(&models.User{Email: body.Email}).
		First(&user).
		Error; err != nil {
		log.Printf("error: %s\n", err.Error())
		return nil, http.StatusUnauthorized, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
		return nil, http.StatusUnauthorized, invalid
	}

	if err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Model(&models.User{}).
			Where("id", user.ID).
			Update("last_active", time.Now()).
			Error; err != nil {
			return err
		}
		return nil
	}); err != nil {
		log.Printf("Error logging in user [%d]: %s\n", user.ID, err.Error())
		return nil, http.StatusBadRequest, err
	}

	signed, err := utils.GenerateJWT(user.Email, user.ID, user.Role)
	if err != nil {
		log.Printf("Error generating JWT token: %s\n", err.Error())
		return nil, http.StatusInternalServerError, errors.New("something went wrong")
	}
	utils.Audit(dbi, user.Email, "login", "user", user.ID, nil)
	return &signed, http.StatusOK, nil
}
