package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"stylieapi/models"
	"stylieapi/services"
)

const TypeOutfitImage = "generate:outfit_image"

type OutfitImagePayload struct {
	MessageID uint `json:"message_id"`
}

// NewClient initializes an asynq client for enqueuing tasks
func NewClient() *asynq.Client {
	return asynq.NewClient(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")})
}

func NewOutfitImageTask(messageID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(OutfitImagePayload{MessageID: messageID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeOutfitImage, payload), nil
}

func saveImageGenerationFail(db *gorm.DB, message models.ChatMessage) {
	message.ImageStatus = "failed"
	if err := db.Save(&message).Error; err != nil {
		fmt.Printf("[Message: %v] Error on saving failed image status %v\n", message.ID, err)
		sentry.CaptureException(fmt.Errorf("[Message: %v] Error on saving failed image status %v", message.ID, err))
	}
}

// HandleOutfitImageTask renders the outfit image for a chat message, uploads
// it to R2 and alerts the owner's devices when it is ready.
func HandleOutfitImageTask(ctx context.Context, t *asynq.Task, db *gorm.DB, stylist services.StylistProvider, awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	googleKey := os.Getenv("GOOGLE_API_KEY")
	if googleKey == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload OutfitImagePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Message: %v] Start outfit image generation\n", payload.MessageID)

	var message models.ChatMessage
	res := db.Joins("ChatSession").First(&message, payload.MessageID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving message for image generation %v", payload.MessageID))
		return res.Error
	}
	if message.ImagePrompt == nil || *message.ImagePrompt == "" {
		fmt.Printf("[Message: %v] No image prompt, nothing to render\n", payload.MessageID)
		saveImageGenerationFail(db, message)
		return nil
	}

	model := services.Flash25Image
	fmt.Printf("[Message: %v] Model: %s\n", payload.MessageID, model.String())

	result, err := stylist.GenerateOutfitImage(ctx, *message.ImagePrompt, model)
	if err != nil {
		if strings.Contains(err.Error(), "content violation") {
			saveImageGenerationFail(db, message)
			sentry.CaptureException(fmt.Errorf("[Message: %v] Content violation on generating outfit image: %v", payload.MessageID, err))
			return nil
		}
		saveImageGenerationFail(db, message)
		sentry.CaptureException(fmt.Errorf("[Message: %v] Error on generating outfit image: %v", payload.MessageID, err))
		return err
	}
	if result == nil || len(result.Images) == 0 {
		saveImageGenerationFail(db, message)
		sentry.CaptureException(fmt.Errorf("[Message: %v] No image returned but no error provided", payload.MessageID))
		return fmt.Errorf("[Message: %v] No image returned but no error provided", payload.MessageID)
	}

	bucketName := services.GetEnv("R2_BUCKET_NAME", "")
	objectKey := fmt.Sprintf("outfits/msg_%d.png", message.ID)

	uploadUrl, presignErr := awsService.PresignLink(context.Background(), bucketName, objectKey)
	if presignErr != nil {
		fmt.Printf("[Message: %v] Unable to create presign link for %s: %v\n", payload.MessageID, objectKey, presignErr)
		sentry.CaptureException(presignErr)
		return presignErr
	}

	respBody, statusCode, err := awsService.UploadToPresignedURL(context.Background(), bucketName, uploadUrl, result.Images[0])
	fmt.Printf("[Message: %v] R2 Upload file size %v, response body: %s, status code: %d\n", payload.MessageID, len(result.Images[0]), respBody, statusCode)
	if err != nil || statusCode != 200 {
		fmt.Printf("[Message: %v] Error on uploading outfit image %s: %v\n", payload.MessageID, objectKey, err)
		saveImageGenerationFail(db, message)
		sentry.CaptureException(err)
		return err
	}

	message.OutfitImageURL = &objectKey
	message.ImageStatus = "completed"
	if tx := db.Save(&message); tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on saving message %v", payload.MessageID))
		return tx.Error
	}
	fmt.Printf("[Message: %v] Outfit image generation finished successfully\n", payload.MessageID)

	var owner models.UserAccount
	if err := db.First(&owner, message.ChatSession.OwnerID).Error; err != nil {
		fmt.Printf("[Message: %v] Error fetching owner %v for notification: %v\n", payload.MessageID, message.ChatSession.OwnerID, err)
		return nil
	}
	if owner.ReceiveNotifications {
		fmt.Printf("[Message: %v] Sending notification to user %v\n", payload.MessageID, owner.ID)
		services.SendNotification(fbApp, db, owner.ID, "Your outfit is ready",
			"Tap to see the look we put together for you", map[string]string{
				"chat_id":    fmt.Sprintf("%d", message.ChatSessionID),
				"message_id": fmt.Sprintf("%d", message.ID),
				"type":       "outfit_image_ready",
			})
	} else {
		fmt.Printf("[Message: %v] Notifications disabled, skipping push for user %v\n", payload.MessageID, owner.ID)
	}
	return nil
}
