package telegram

import (
	"log"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func EscapeMessage(message string) string {
	r := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return r.Replace(message)
}

// NotifyOps posts a message to the ops chat. Delivery is best effort,
// a broken bot must never fail the request that triggered it.
func NotifyOps(message string) {
	token := os.Getenv("TG_TOKEN")
	if token == "" {
		return
	}
	chatId, err := strconv.ParseInt(os.Getenv("TG_OPS_CHAT_ID"), 10, 64)
	if err != nil {
		log.Println("Invalid TG_OPS_CHAT_ID, skipping ops notification")
		return
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Println("Error tg bot init", err)
		return
	}
	msg := tgbotapi.NewMessage(chatId, message)
	msg.ParseMode = "markdown"
	if _, err := bot.Send(msg); err != nil {
		log.Println("Error sending ops notification", err)
	}
}
