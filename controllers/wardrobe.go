package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"stylieapi/models"
	"stylieapi/outfit"
	"stylieapi/services"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// free accounts get a flat wardrobe cap, paid ones are unlimited
const freeWardrobeLimit = 40

type CreateWardrobeItemIn struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Category string  `json:"category" validate:"required,max=60"`
	FileName *string `json:"file_name" validate:"omitempty,max=200"`
}

type WardrobeItemResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Uri       string `json:"uri,omitempty"`
	CreatedAt string `json:"created_at"`
}

type WardrobeItemCreatedResponse struct {
	Item          WardrobeItemResponse `json:"item"`
	FileUploadUrl string               `json:"file_upload_url"`
}

type WardrobeListResponse struct {
	Tops      []WardrobeItemResponse `json:"tops"`
	Bottoms   []WardrobeItemResponse `json:"bottoms"`
	Dresses   []WardrobeItemResponse `json:"dresses"`
	Outerwear []WardrobeItemResponse `json:"outerwear"`
	Footwear  []WardrobeItemResponse `json:"footwear"`
	Other     []WardrobeItemResponse `json:"other"`
}

type WardrobeController struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
}

func (controller *WardrobeController) WardrobeRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateItem)
	g.GET("/list", controller.ListItems)
	g.DELETE("/:itemId", controller.DeleteItem)
}

func (controller *WardrobeController) CreateItem(c echo.Context) error {
	var req CreateWardrobeItemIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	if user.Subscription == "free" {
		var totalItemCount int64
		if err := db.Model(&models.WardrobeItem{}).Where("owner_id = ?", user.ID).Count(&totalItemCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get wardrobe data"})
		}
		fmt.Printf("[User %v] Free plan, wardrobe count: %v", user.ID, totalItemCount)
		if totalItemCount >= freeWardrobeLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of %v wardrobe items, please subscribe", freeWardrobeLimit)})
		}
	}

	item := models.WardrobeItem{
		Name:     req.Name,
		Category: req.Category,
		OwnerID:  user.ID,
	}
	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	var uploadUrl string
	if req.FileName != nil && *req.FileName != "" {
		if !services.IsAllowedImageName(*req.FileName) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Only image attachments are allowed"})
		}
		safeFileName := fmt.Sprintf("wardrobe/%v/%s", user.ID, *req.FileName)
		var presignErr error
		uploadUrl, presignErr = controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
		item.ImageURL = &safeFileName
		if presignErr != nil {
			log.Printf("Unable to presign generate for %s!, %s", item.Name, presignErr)
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"message": "Error while creating wardrobe item with attachment",
			})
		}
	}
	if err := db.Create(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create wardrobe item"})
	}

	response := WardrobeItemCreatedResponse{
		Item: WardrobeItemResponse{
			ID:        item.ID,
			Name:      item.Name,
			Category:  item.Category,
			CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		},
		FileUploadUrl: uploadUrl,
	}
	return c.JSON(http.StatusCreated, response)
}

// populatePresignedItemImages enriches raw wardrobe models with presigned read URLs
// concurrently, with a direct R2 failsafe for when the cache system itself fails.
func (controller *WardrobeController) populatePresignedItemImages(ctx context.Context, items []models.WardrobeItem) []WardrobeItemResponse {
	if len(items) == 0 {
		return []WardrobeItemResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]WardrobeItemResponse, len(items))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	title := cases.Title(language.English)

	for i, wardrobeItem := range items {
		wg.Add(1)
		go func(index int, item models.WardrobeItem) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL
				url, err := controller.URLCache.GetReadURL(ctx, objectKey)
				if err == nil {
					imageUrl = url
				} else {
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})
					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl stays empty, the rest of the list still renders
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = WardrobeItemResponse{
				ID:        item.ID,
				Name:      title.String(item.Name),
				Category:  item.Category,
				Uri:       imageUrl,
				CreatedAt: item.CreatedAt.Format("2006-01-02T15:04:05Z"),
			}
		}(i, wardrobeItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *WardrobeController) ListItems(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var items []models.WardrobeItem
	if err := db.Where("owner_id = ?", user.ID).Order("created_at asc").Find(&items).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
	}

	processedResponses := controller.populatePresignedItemImages(c.Request().Context(), items)

	response := WardrobeListResponse{
		Tops:      []WardrobeItemResponse{},
		Bottoms:   []WardrobeItemResponse{},
		Dresses:   []WardrobeItemResponse{},
		Outerwear: []WardrobeItemResponse{},
		Footwear:  []WardrobeItemResponse{},
		Other:     []WardrobeItemResponse{},
	}
	for _, resp := range processedResponses {
		switch outfit.NormalizeCategory(resp.Category) {
		case outfit.CategoryTop:
			response.Tops = append(response.Tops, resp)
		case outfit.CategoryBottom:
			response.Bottoms = append(response.Bottoms, resp)
		case outfit.CategoryDress:
			response.Dresses = append(response.Dresses, resp)
		case outfit.CategoryOuterwear:
			response.Outerwear = append(response.Outerwear, resp)
		case outfit.CategoryFootwear:
			response.Footwear = append(response.Footwear, resp)
		default:
			response.Other = append(response.Other, resp)
		}
	}
	return c.JSON(http.StatusOK, response)
}

func (controller *WardrobeController) DeleteItem(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	var itemId uint
	if err := echo.PathParamsBinder(c).Uint("itemId", &itemId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var item models.WardrobeItem
	result := db.Where("id = ? AND owner_id = ?", itemId, user.ID).Limit(1).Find(&item)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe item"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Wardrobe item not found"})
	}
	if err := db.Delete(&item).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete wardrobe item"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
