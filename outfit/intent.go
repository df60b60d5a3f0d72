package outfit

import (
	"regexp"
	"strings"

	"stylieapi/models"
)

// Occasion is a coarse intent label derived from keyword-bucket matching.
type Occasion string

const (
	OccasionInterview Occasion = "interview"
	OccasionDate      Occasion = "date"
	OccasionDrive     Occasion = "drive"
	OccasionParty     Occasion = "party"
	OccasionCasual    Occasion = "casual"
	OccasionOther     Occasion = "other"
)

// JacketIntent is the ternary signal derived from negation/affirmation
// context around garment tokens.
type JacketIntent string

const (
	JacketInclude JacketIntent = "include"
	JacketExclude JacketIntent = "exclude"
	JacketNone    JacketIntent = "none"
)

type occasionBucket struct {
	occasion Occasion
	patterns []*regexp.Regexp
}

func newOccasionBucket(occasion Occasion, keywords ...string) occasionBucket {
	b := occasionBucket{occasion: occasion}
	for _, kw := range keywords {
		b.patterns = append(b.patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}
	return b
}

var occasionBuckets = []occasionBucket{
	newOccasionBucket(OccasionInterview, "interview", "job interview", "panel", "interview outfit"),
	newOccasionBucket(OccasionDate, "date", "dating", "date night"),
	newOccasionBucket(OccasionDrive, "drive", "long drive", "road trip"),
	newOccasionBucket(OccasionParty, "party", "club", "wedding", "celebration", "party night"),
	newOccasionBucket(OccasionCasual, "casual", "everyday", "casual outing"),
}

// DetectOccasion classifies free text into an Occasion. A bucket only wins
// with at least two distinct keyword hits, so a single stray word cannot
// commit an occasion. Text in unsupported languages falls out to OccasionOther.
func DetectOccasion(text string) Occasion {
	if text == "" {
		return OccasionOther
	}
	low := strings.ToLower(text)
	for _, bucket := range occasionBuckets {
		matches := 0
		for _, re := range bucket.patterns {
			if re.MatchString(low) {
				matches++
			}
		}
		if matches >= 2 {
			return bucket.occasion
		}
	}
	return OccasionOther
}

var garmentMentionRegex = regexp.MustCompile(`(?i)\b(jacket|coat|outerwear|blazer)s?\b`)

// MentionsOuterwear reports whether any of the texts names a jacket-like garment.
func MentionsOuterwear(texts ...string) bool {
	for _, t := range texts {
		if garmentMentionRegex.MatchString(t) {
			return true
		}
	}
	return false
}

var tokenSplitRegex = regexp.MustCompile(`[.,!?;:()\[\]"]+`)
var doNotRegex = regexp.MustCompile(`\bdo not\b|\bdon'?t\b`)

var negationWords = map[string]bool{
	"no": true, "dont": true, "don't": true, "never": true,
	"without": true, "exclude": true, "avoid": true, "skip": true,
}

var affirmationWords = map[string]bool{
	"include": true, "including": true, "add": true, "with": true,
	"wear": true, "put": true, "wearing": true,
}

var garmentWords = map[string]bool{
	"jacket": true, "coat": true, "outerwear": true, "blazer": true,
}

// DetectJacketIntent inspects up to the 4 tokens preceding each garment
// mention for negation or affirmation cues. Negation always wins; a garment
// mentioned without any cue counts as include; an unmentioned garment
// (including non-English text) yields JacketNone.
func DetectJacketIntent(text string) JacketIntent {
	if text == "" {
		return JacketNone
	}
	low := strings.ToLower(text)
	if !garmentMentionRegex.MatchString(low) {
		return JacketNone
	}

	tokens := strings.Fields(tokenSplitRegex.ReplaceAllString(low, " "))
	var indices []int
	for i, t := range tokens {
		if garmentWords[strings.TrimSuffix(t, "s")] {
			indices = append(indices, i)
		}
	}

	for _, idx := range indices {
		start := idx - 4
		if start < 0 {
			start = 0
		}
		window := tokens[start:idx]
		if doNotRegex.MatchString(strings.Join(window, " ")) {
			return JacketExclude
		}
		for _, w := range window {
			if negationWords[w] {
				return JacketExclude
			}
		}
		for _, w := range window {
			if affirmationWords[w] {
				return JacketInclude
			}
		}
	}

	return JacketInclude
}

// colorPalette is fixed; ExtractColors reports hits in palette order.
var colorPalette = []string{
	"red", "blue", "green", "black", "white", "yellow", "pink", "purple",
	"brown", "grey", "gray", "beige", "orange", "navy", "maroon",
}

// ExtractColors returns every palette color mentioned anywhere in the text.
func ExtractColors(text string) []string {
	if text == "" {
		return nil
	}
	low := strings.ToLower(text)
	var found []string
	for _, c := range colorPalette {
		if strings.Contains(low, c) {
			found = append(found, c)
		}
	}
	return found
}

func itemMatchesColor(item models.WardrobeItem, color string) bool {
	return strings.Contains(strings.ToLower(item.Name), color) ||
		strings.Contains(strings.ToLower(item.Category), color)
}
