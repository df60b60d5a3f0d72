package models

import "github.com/lib/pq"

type ChatSession struct {
	JsonModel
	Owner   UserAccount `json:"-"`
	OwnerID uint        `json:"-"`
	// "wardrobe" for outfit generation turns, "chat" for plain conversation
	Mode     string        `gorm:"default:chat" json:"mode"`
	Title    *string       `json:"title"`
	Messages []ChatMessage `gorm:"foreignKey:ChatSessionID" json:"messages"`
}

type ChatMessage struct {
	JsonModel
	ChatSessionID uint        `json:"-"`
	ChatSession   ChatSession `json:"-"`

	UserMessage string `gorm:"type:text" json:"user_message"`

	// post-processed stylist output; raw completions are never stored
	Reply           string         `gorm:"type:text" json:"reply"`
	Explain         string         `gorm:"type:text" json:"explain"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`
	ImagePrompt     *string        `json:"image_prompt"`
	SelectedItemIDs pq.StringArray `gorm:"type:text[]" json:"selected_item_ids"`

	// outfit render, produced asynchronously by the worker
	OutfitImageURL *string `json:"outfit_image_url"`
	ImageStatus    string  `gorm:"default:idle" json:"image_status"` // idle, pending, completed, failed

	LLMModel            *string `json:"llm_model"`
	LLMInputTokenCount  *int32  `json:"llm_input_token_count"`
	LLMOutputTokenCount *int32  `json:"llm_output_token_count"`
	LLMTotalTokenCount  *int32  `json:"llm_total_token_count"`
}
