package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"stylieapi/prompting"
)

// LLMModelName is the GenAI model used for a stylist call.
type LLMModelName int32

const (
	Flash25 LLMModelName = iota
	FlashLite25
	Flash20
	Flash25Image
)

func (t LLMModelName) String() string {
	switch t {
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash25Image:
		return "gemini-2.5-flash-image-preview"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

type StylistResponse struct {
	Response         string   `json:"response"`
	Images           [][]byte `json:"images,omitempty"`
	InputTokenCount  int32    `json:"input_token_count"`
	OutputTokenCount int32    `json:"output_token_count"`
	TotalTokenCount  int32    `json:"total_token_count"`
}

// StylistProvider is the model boundary for chat and outfit image generation.
type StylistProvider interface {
	Chat(ctx context.Context, turns []prompting.Turn, modelName LLMModelName) (*StylistResponse, error)
	GenerateOutfitImage(ctx context.Context, prompt string, modelName LLMModelName) (*StylistResponse, error)
}

type GoogleStylist struct{}

func floatPointer(f float32) *float32 {
	return &f
}

func newGenaiClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
}

// Chat sends the composed turns to Gemini. System turns become the system
// instruction; user turns become the conversation contents.
func (GoogleStylist) Chat(ctx context.Context, turns []prompting.Turn, modelName LLMModelName) (*StylistResponse, error) {
	client, err := newGenaiClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %v", err)
	}

	var systemParts []*genai.Part
	var contents []*genai.Content
	for _, turn := range turns {
		if turn.Role == prompting.RoleSystem {
			systemParts = append(systemParts, &genai.Part{Text: turn.Content})
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: 4096,
		Temperature:     floatPointer(0.8),
	}
	if len(systemParts) > 0 {
		config.SystemInstruction = &genai.Content{Parts: systemParts}
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), contents, config)
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}

	resp := &StylistResponse{Response: result.Text()}
	if result.UsageMetadata != nil {
		resp.InputTokenCount = result.UsageMetadata.PromptTokenCount
		resp.OutputTokenCount = result.UsageMetadata.CandidatesTokenCount
		resp.TotalTokenCount = result.UsageMetadata.TotalTokenCount
		fmt.Println("Input token count:", resp.InputTokenCount)
		fmt.Println("Output token count:", resp.OutputTokenCount)
		fmt.Println("Total token count:", resp.TotalTokenCount)
	}
	return resp, nil
}

// GenerateOutfitImage renders the outfit described by an image_prompt into
// inline PNG bytes.
func (GoogleStylist) GenerateOutfitImage(ctx context.Context, prompt string, modelName LLMModelName) (*StylistResponse, error) {
	client, err := newGenaiClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating genai client: %v", err)
	}

	fullPrompt := "Generate a clean flat-lay fashion product photo of the following outfit on a plain light background, no people, no text, no watermarks: " + prompt

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{
		{Parts: []*genai.Part{{Text: fullPrompt}}},
	}, &genai.GenerateContentConfig{
		MaxOutputTokens: 8192,
		Temperature:     floatPointer(1),
	})
	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		return nil, fmt.Errorf("content violation: %s", result.PromptFeedback.BlockReasonMessage)
	}

	images, err := getAllInlineImages(result)
	if err != nil {
		fmt.Println("Error extracting inline images:", err)
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("model returned no image for prompt")
	}

	resp := &StylistResponse{Response: result.Text(), Images: images}
	if result.UsageMetadata != nil {
		resp.InputTokenCount = result.UsageMetadata.PromptTokenCount
		resp.OutputTokenCount = result.UsageMetadata.CandidatesTokenCount
		resp.TotalTokenCount = result.UsageMetadata.TotalTokenCount
	}
	return resp, nil
}

func getAllInlineImages(result *genai.GenerateContentResponse) ([][]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("nil response")
	}

	var allImageData [][]byte
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}

		for _, part := range cand.Content.Parts {
			inlineData := part.InlineData
			if inlineData == nil {
				continue
			}
			if strings.HasPrefix(inlineData.MIMEType, "image/") && len(inlineData.Data) > 0 {
				allImageData = append(allImageData, inlineData.Data)
			}
		}
	}
	return allImageData, nil
}
