package controllers

import (
	"fmt"
	"net/http"
	"time"

	"stylieapi/models"
	"stylieapi/outfit"
	"stylieapi/prompting"
	"stylieapi/services"
	"stylieapi/tasks"
	"stylieapi/telegram"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// free accounts get this many stylist turns per day unless an account level
// override is set
const defaultDailyChatLimit = 30

const academicDeclineReply = "I focus on style, lifestyle and confidence, not technical or academic topics. Tell me about your day, mood or any outfit question and I will jump in."
const academicDeclineExplain = "Scope limited to fashion & lifestyle."

type ChatMessageIn struct {
	Message string `json:"message" validate:"omitempty,max=2000"`
	ChatID  *uint  `json:"chat_id"`
	Mode    string `json:"mode" validate:"omitempty,oneof=chat wardrobe"`
}

type OutfitItemOut struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type ChatTurnResponse struct {
	ChatID       uint            `json:"chat_id"`
	MessageID    uint            `json:"message_id,omitempty"`
	Reply        string          `json:"reply"`
	Explain      string          `json:"explain"`
	Tags         []string        `json:"tags"`
	Outfit       []OutfitItemOut `json:"outfit,omitempty"`
	Alternatives []OutfitItemOut `json:"alternatives,omitempty"`
	Occasion     string          `json:"occasion,omitempty"`
	ImageStatus  string          `json:"image_status,omitempty"`
}

type ChatController struct {
	Stylist     services.StylistProvider
	FirebaseApp *firebase.App
}

func (controller *ChatController) ChatRoutes(g *echo.Group) {
	g.POST("", controller.PostMessage)
	g.GET("", controller.ListSessions)
	g.DELETE("/:chatId", controller.DeleteSession)
}

func outfitItemsOut(items []models.WardrobeItem) []OutfitItemOut {
	out := make([]OutfitItemOut, 0, len(items))
	for _, item := range items {
		out = append(out, OutfitItemOut{ID: item.ID, Name: item.Name, Category: item.Category})
	}
	return out
}

func dailyChatLimit(user models.UserAccount) int64 {
	if user.EnforcedDailyChatLimit != nil {
		return int64(*user.EnforcedDailyChatLimit)
	}
	return defaultDailyChatLimit
}

func (controller *ChatController) PostMessage(c echo.Context) error {
	var req ChatMessageIn
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

	var session models.ChatSession
	if req.ChatID != nil {
		result := db.Where("id = ? AND owner_id = ?", *req.ChatID, user.ID).Limit(1).Find(&session)
		if result.Error != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch chat"})
		}
		if result.RowsAffected == 0 {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Chat not found"})
		}
		if req.Message == "" && session.Mode != "wardrobe" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required when appending to a chat"})
		}
	} else {
		session = models.ChatSession{OwnerID: user.ID, Mode: "chat"}
		if req.Mode != "" {
			session.Mode = req.Mode
		}
		if req.Message != "" {
			title := req.Message
			if len(title) > 60 {
				title = title[:60]
			}
			session.Title = &title
		}
		if err := db.Create(&session).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to create chat"})
		}
		if req.Message == "" && session.Mode != "wardrobe" {
			// created empty chat
			return c.JSON(http.StatusOK, ChatTurnResponse{ChatID: session.ID})
		}
	}

	message := req.Message
	if message == "" {
		// wardrobe mode has a canonical opener
		message = prompting.DefaultWardrobePrompt
	}

	var dailyCount int64
	today := time.Now().UTC().Format("2006-01-02")
	if err := db.Model(&models.ChatMessage{}).
		Joins("JOIN chat_sessions ON chat_sessions.id = chat_messages.chat_session_id").
		Where("chat_sessions.owner_id = ? AND DATE(chat_messages.created_at) = ?", user.ID, today).
		Count(&dailyCount).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get chat data"})
	}
	limit := dailyChatLimit(user)
	fmt.Printf("[User %v] Daily chat count: %v limit: %v\n", user.ID, dailyCount, limit)
	if dailyCount >= limit {
		return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily messages. Please wait for the next day.", limit)})
	}

	var wardrobe []models.WardrobeItem
	if session.Mode == "wardrobe" {
		if err := db.Where("owner_id = ?", user.ID).Order("created_at asc").Find(&wardrobe).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch wardrobe"})
		}
	}

	var parsed outfit.AssistantResponse
	var llmModel *string
	var inputTokens, outputTokens, totalTokens *int32
	academic := prompting.IsAcademic(message)
	if academic {
		parsed = outfit.AssistantResponse{
			Reply:   academicDeclineReply,
			Explain: academicDeclineExplain,
			Tags:    []string{"boundary"},
		}
	} else {
		var turns []prompting.Turn
		if session.Mode == "wardrobe" {
			turns = prompting.ComposeWardrobe(&user, wardrobe, message)
		} else {
			turns = prompting.Compose(&user, message)
		}
		resp, err := controller.Stylist.Chat(c.Request().Context(), turns, services.Flash25)
		if err != nil {
			fmt.Printf("[User %v] Stylist call failed: %v\n", user.ID, err)
			sentry.CaptureException(err)
			go telegram.NotifyOps(fmt.Sprintf("⚠️ Stylist call failed for user %v: %s", user.ID, telegram.EscapeMessage(err.Error())))
			if session.Mode != "wardrobe" {
				return c.JSON(http.StatusBadGateway, map[string]string{"error": "Our stylist is unavailable right now, please try again"})
			}
			// wardrobe mode degrades to the resolver's random fallback
			parsed = outfit.AssistantResponse{Tags: []string{}}
		} else {
			parsed = outfit.Parse(resp.Response)
			llmModel = StrPointer(services.Flash25.String())
			inputTokens = Int32Pointer(resp.InputTokenCount)
			outputTokens = Int32Pointer(resp.OutputTokenCount)
			totalTokens = Int32Pointer(resp.TotalTokenCount)
		}
	}

	reply := outfit.SanitizeForDisplay(parsed.Reply)

	messageDb := models.ChatMessage{
		ChatSessionID:       session.ID,
		UserMessage:         message,
		Reply:               reply,
		Explain:             parsed.Explain,
		Tags:                parsed.Tags,
		LLMModel:            llmModel,
		LLMInputTokenCount:  inputTokens,
		LLMOutputTokenCount: outputTokens,
		LLMTotalTokenCount:  totalTokens,
	}
	if parsed.ImagePrompt != "" {
		messageDb.ImagePrompt = &parsed.ImagePrompt
	}

	response := ChatTurnResponse{
		ChatID:  session.ID,
		Reply:   reply,
		Explain: parsed.Explain,
		Tags:    parsed.Tags,
	}

	if session.Mode == "wardrobe" && !academic {
		selection := outfit.Resolve(parsed, wardrobe, message)
		for _, item := range selection.Items {
			messageDb.SelectedItemIDs = append(messageDb.SelectedItemIDs, UIntToStr(item.ID))
		}
		if response.Reply == "" {
			fallback := selection.Explanation
			if fallback == "" {
				fallback = "Suggested items from your wardrobe."
			}
			response.Reply = fallback
			messageDb.Reply = fallback
		}
		response.Explain = IfThenElse(parsed.Explain != "", parsed.Explain, response.Reply).(string)
		messageDb.Explain = response.Explain
		response.Outfit = outfitItemsOut(selection.Items)
		response.Alternatives = outfitItemsOut(selection.Alternatives)
		response.Occasion = string(selection.Occasion)
	}

	if err := db.Create(&messageDb).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save message"})
	}
	db.Model(&session).Update("updated_at", time.Now())

	if messageDb.ImagePrompt != nil && session.Mode == "wardrobe" {
		asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
		if ok && asynqClient != nil {
			messageDb.ImageStatus = "pending"
			if err := db.Save(&messageDb).Error; err != nil {
				sentry.CaptureException(err)
			}
			task, err := tasks.NewOutfitImageTask(messageDb.ID)
			if err != nil {
				sentry.CaptureException(err)
			} else if info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate")); err != nil {
				// fire and forget, the chat turn already succeeded
				fmt.Println("[Queue] Failed to enqueue outfit image task", err)
				sentry.CaptureException(err)
			} else {
				fmt.Println("[Queue] Outfit image task submitted, Message ID: ", messageDb.ID, " Task ID: ", info.ID)
			}
		}
	}

	response.MessageID = messageDb.ID
	response.ImageStatus = messageDb.ImageStatus
	return c.JSON(http.StatusOK, response)
}

func (controller *ChatController) ListSessions(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var sessions []models.ChatSession
	if err := db.Where("owner_id = ?", user.ID).
		Order("created_at desc").
		Limit(50).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("chat_messages.created_at asc")
		}).
		Find(&sessions).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch chats"})
	}
	return c.JSON(http.StatusOK, echo.Map{"chats": sessions})
}

func (controller *ChatController) DeleteSession(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	var chatId uint
	if err := echo.PathParamsBinder(c).Uint("chatId", &chatId).BindError(); err != nil {
		return echo.ErrBadRequest
	}

	var session models.ChatSession
	result := db.Where("id = ? AND owner_id = ?", chatId, user.ID).Limit(1).Find(&session)
	if result.Error != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch chat"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Chat not found"})
	}
	if err := db.Where("chat_session_id = ?", session.ID).Delete(&models.ChatMessage{}).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete chat"})
	}
	if err := db.Delete(&session).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to delete chat"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
