// Package prompting assembles the stylist conversation turns sent to the
// model: persona, style profile, wardrobe inventory and per-turn language
// and intent instructions.
package prompting

import (
	"fmt"
	"regexp"
	"strings"

	"stylieapi/models"
	"stylieapi/outfit"
)

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Turn is one message in the composed conversation.
type Turn struct {
	Role    Role
	Content string
}

// SystemPrompt is the stylist persona. Roughly 60% friendly companion,
// 40% confident stylist voice.
const SystemPrompt = `You are StylieAI, a friendly fashion & lifestyle companion. Prioritize natural, empathetic conversation while keeping a distinct confident stylist voice. Provide fashion or confidence tips only when relevant or requested. If the user just greets, greet back warmly and ask about their day, mood, or what they feel like wearing. Politely decline academic, coding, technical, medical, or legal questions and steer back to style, mood, habits, confidence. Keep it concise, real, and non-poetic; avoid shayari. Use at most 1-2 emojis only when they feel organic.
Critically: mirror the user's language and tone. If the user uses Hinglish/Hindi terms (even in Latin script), respond in natural Hinglish; if mostly English, reply in English. Do not overdo Hindi; keep it simple and conversational.
When you give structured outfit guidance you may include a fenced JSON block: {"reply":"...","explain":"short why","tags":["casual"],"image_prompt":"short outfit description"}. Otherwise plain text is fine.`

// DefaultWardrobePrompt stands in when a wardrobe-mode request arrives with
// an empty message.
const DefaultWardrobePrompt = "Pick an outfit from my wardrobe for today"

var devanagariRegex = regexp.MustCompile(`[\x{0900}-\x{097F}]`)

// Romanized Hindi tokens that mark a message as Hinglish. Ambiguous tokens
// that collide with common English words ("to", "h") are deliberately absent.
var hinglishTokens = []string{
	"bhai", "yaar", "mast", "accha", "acha", "nahi", "nai", "nhi",
	"haan", "hain", "hai", "hota", "hoti", "hoga", "chahiye", "chaiye",
	"kuch", "toh", "aur", "kya", "kyu", "kyun", "kaisa", "kaise",
	"thik", "theek", "kapde", "rang", "pehen", "mera", "meri", "mere",
	"tum", "raha", "rahi", "karo",
}

var hinglishRegex = regexp.MustCompile(`(?i)\b(` + strings.Join(hinglishTokens, "|") + `)\b`)

// IsHinglish reports whether the message reads as Hindi or Romanized
// Hinglish rather than plain English.
func IsHinglish(message string) bool {
	if devanagariRegex.MatchString(message) {
		return true
	}
	return hinglishRegex.MatchString(strings.ToLower(message))
}

var academicRegex = regexp.MustCompile(`(?i)\b(code|program|python|java|c\+\+|javascript|algorithm|equation|integral|derivative|physics|chemistry|biology|calculus|math|solve|compute|formula|theorem)\b`)

// IsAcademic reports whether the message asks for technical or academic help
// that the stylist declines without ever reaching the model.
func IsAcademic(message string) bool {
	return academicRegex.MatchString(message)
}

var fashionKeywordRegex = regexp.MustCompile(`(?i)(outfit|style|wear|dress|shirt|pant|jeans|shoe|jacket|colour|color|wardrobe|look|matching|fashion|hoodie|kurta|saree|lehenga|blazer|formal)`)

func profileBlock(user *models.UserAccount) string {
	orNA := func(s string) string {
		if s == "" {
			return "n/a"
		}
		return s
	}
	colours := "n/a"
	if len(user.FavouriteColours) > 0 {
		colours = strings.Join(user.FavouriteColours, ", ")
	}
	return fmt.Sprintf("User Profile\nHeight: %v\nBody: %v\nSkin: %v\nFav Colours: %v\nRegion: %v",
		orNA(user.HeightRange), orNA(user.BodyType), orNA(user.SkinTone), colours, orNA(user.Region))
}

// Compose builds the turns for a free-form chat message: persona, an optional
// Hinglish override, then the user's profile with language and intent
// instructions wrapped around the message.
func Compose(user *models.UserAccount, message string) []Turn {
	hinglish := IsHinglish(message)
	fashionIntent := fashionKeywordRegex.MatchString(message)
	wordCount := len(strings.Fields(message))
	casualShort := wordCount <= 8 && !fashionIntent

	languageInstruction := "Use user tone; do not force Hinglish."
	if hinglish {
		languageInstruction = "User is using Hinglish. Reply in natural Hinglish (mix simple Hindi + English), avoid heavy Hindi or poetic tone. Mirror user language."
	}

	var intentInstruction string
	switch {
	case casualShort:
		intentInstruction = "Intent: casual greeting / small talk. Do NOT push outfit advice yet; ask about mood or day."
	case fashionIntent:
		intentInstruction = "Intent: fashion/style query. Provide help if explicitly asked; keep it concise and friendly."
	default:
		intentInstruction = "Intent: lifestyle / general chat."
	}

	turns := []Turn{{Role: RoleSystem, Content: SystemPrompt}}
	if hinglish {
		turns = append(turns, Turn{
			Role:    RoleSystem,
			Content: "For this turn, respond in Hinglish (simple Hindi + English). Keep it casual, friendly, and avoid poetic lines. Use at most one emoji.",
		})
	}
	turns = append(turns, Turn{
		Role: RoleUser,
		Content: profileBlock(user) + "\n---\n" +
			languageInstruction + "\n" + intentInstruction + "\nUser Message: " + message,
	})
	return turns
}

// ComposeWardrobe builds the turns for wardrobe-assist mode: the user's real
// inventory with item ids, followed by the selection protocol the parser
// expects, so the model picks actual items instead of inventing them.
func ComposeWardrobe(user *models.UserAccount, items []models.WardrobeItem, message string) []Turn {
	if message == "" {
		message = DefaultWardrobePrompt
	}

	var lines []string
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%v: %v (%v)", it.ID, it.Name, it.Category))
	}

	languageInstruction := "Please reply in English."
	if IsHinglish(message) {
		languageInstruction = "Please reply in Hinglish (use Romanized Hindi / Latin script). Give the explanation and 'why' in Hinglish so the user sees the reasoning in the same language as their question."
	}

	personaInstruction := "Assume the outfit is for a man unless the user explicitly says otherwise. Prefer typical men's pairings (top + bottom), and include a jacket or accessory only when relevant or available."

	var b strings.Builder
	if len(lines) > 0 {
		b.WriteString("My wardrobe items:\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(message)
	fmt.Fprintf(&b, "\n\n%v %v IMPORTANT: Only choose up to %v items from the list above. Do NOT include item IDs inside the normal reply text. If you select items, append a single JSON object on its own line at the end of your response exactly like:\n{ \"selected_item_ids\": [\"id1\",\"id2\"] } and do not include these ids anywhere else in the reply.",
		languageInstruction, personaInstruction, outfit.MaxItems)

	return []Turn{
		{Role: RoleSystem, Content: SystemPrompt},
		{Role: RoleUser, Content: b.String()},
	}
}
