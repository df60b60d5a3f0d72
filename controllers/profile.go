package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stylieapi/models"
	"stylieapi/services"

	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

type ProfileController struct {
	Google services.GoogleServiceProvider
}

func profileOut(user models.UserAccount) models.StyleProfileOut {
	return models.StyleProfileOut{
		Id:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		AvatarURL:        user.AvatarURL,
		Subscription:     user.Subscription,
		HeightRange:      user.HeightRange,
		BodyType:         user.BodyType,
		SkinTone:         user.SkinTone,
		FavouriteColours: user.FavouriteColours,
		Region:           user.Region,
	}
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		return c.JSON(http.StatusOK, profileOut(user))
	})

	g.POST("", func(c echo.Context) error {
		var req models.StyleProfileIn
		if err := c.Bind(&req); err != nil {
			fmt.Println(err)
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		}
		if err := c.Validate(req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		// stored in a canonical casing so prompt text stays consistent
		lower := cases.Lower(language.English)
		title := cases.Title(language.English)
		colours := make([]string, 0, len(req.FavouriteColours))
		for _, colour := range req.FavouriteColours {
			if colour == "" {
				continue
			}
			colours = append(colours, lower.String(colour))
		}
		user.HeightRange = req.HeightRange
		user.BodyType = lower.String(req.BodyType)
		user.SkinTone = lower.String(req.SkinTone)
		user.FavouriteColours = colours
		user.Region = title.String(req.Region)

		if err := db.Save(&user).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save profile"})
		}
		return c.JSON(http.StatusOK, profileOut(user))
	})

	g.POST("/refresh-subscription", func(c echo.Context) error {
		user := c.Get("currentUser").(models.UserAccount)
		db := c.Get("__db").(*gorm.DB)

		b, err := controller.Google.GetUserSubscriptionStatus(context.Background(), fmt.Sprint(user.ID))
		if err != nil {
			fmt.Println("Error fetching subscription status", err)
			return echo.ErrInternalServerError
		}

		var subData map[string]interface{}
		if err := json.Unmarshal(b, &subData); err != nil {
			fmt.Println("Error decoding user subscription status", err)
			return echo.ErrInternalServerError
		}
		subscriber, ok := subData["subscriber"].(map[string]interface{})
		if !ok {
			fmt.Println("Error reading sub status of user ", user.ID)
			return echo.ErrInternalServerError
		}
		entitlements, ok := subscriber["entitlements"].(map[string]interface{})
		if !ok {
			fmt.Println("Error reading sub status of user ", user.ID)
			return echo.ErrInternalServerError
		}

		timeLayout := "2006-01-02T15:04:05Z"
		subscription := "free"
		var expiration *time.Time
		proEntitlement, proOk := entitlements["Pro"].(map[string]interface{})
		if proOk {
			expiresRaw, _ := proEntitlement["expires_date"].(string)
			expires, err := time.Parse(timeLayout, expiresRaw)
			if err == nil && expires.After(time.Now()) {
				subscription = "pro"
				expiration = &expires
			}
		}

		user.Subscription = subscription
		user.ExpirationDate = expiration
		if err := db.Save(&user).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update subscription"})
		}
		fmt.Printf("[User %v] Subscription refreshed: %v\n", user.ID, subscription)
		return c.JSON(http.StatusOK, echo.Map{
			"subscription": user.Subscription,
		})
	})
}
