package outfit

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"stylieapi/models"
)

// MaxItems caps a generated outfit (e.g. top + bottom + jacket).
const MaxItems = 3

// MinItems is the floor the resolver tops selections up to when the
// wardrobe has enough distinct categories.
const MinItems = 2

// RandomSelectionExplanation marks the degenerate fallback path.
const RandomSelectionExplanation = "Random selection"

// OutfitSelection is the validated result of one resolution: at most
// MaxItems items with pairwise-distinct normalized categories, plus the
// displaced alternatives the user can swap in.
type OutfitSelection struct {
	Items        []models.WardrobeItem `json:"items"`
	Alternatives []models.WardrobeItem `json:"alternatives"`
	Explanation  string                `json:"explanation"`
	Occasion     Occasion              `json:"occasion"`
}

// Resolve reconciles a parsed stylist response against the caller's live
// wardrobe and original prompt. Hallucinated ids are dropped, redundant
// categories are displaced to alternatives, and explicit user constraints
// override whatever the model selected. The wardrobe slice is treated as a
// read-only snapshot; Resolve never mutates caller-owned collections.
func Resolve(resp AssistantResponse, wardrobe []models.WardrobeItem, userPrompt string) OutfitSelection {
	occasion := DetectOccasion(userPrompt)
	jacketIntent := DetectJacketIntent(userPrompt + " " + resp.Reply)

	items := resolveSelectedIDs(resp.SelectedItemIDs, wardrobe)
	if len(items) == 0 {
		items = heuristicSelect(resp.Reply, wardrobe, occasion, jacketIntent)
	}

	items, alternatives := dedupeByCategory(items, resp.Reply)

	var moved []models.WardrobeItem
	if occasion == OccasionInterview && !MentionsOuterwear(userPrompt, resp.Reply) {
		items, moved = evictOuterwear(items)
		alternatives = append(alternatives, moved...)
	}

	// Explicit exclusion always wins, no matter what the model picked.
	if jacketIntent == JacketExclude {
		items, moved = evictOuterwear(items)
		alternatives = append(alternatives, moved...)
	}

	// The fill pool must honor the same outerwear constraints, or the
	// minimum-fill pass would reintroduce an item we just evicted.
	pool := wardrobe
	if jacketIntent == JacketExclude ||
		(occasion == OccasionInterview && !MentionsOuterwear(userPrompt, resp.Reply)) {
		pool, _ = evictOuterwear(pool)
	}

	items = fillMinimum(items, pool, MinItems)

	if len(items) > MaxItems {
		alternatives = append(alternatives, items[MaxItems:]...)
		items = items[:MaxItems]
	}

	explanation := resp.Reply
	if explanation == "" {
		explanation = resp.Explain
	}
	explanation = SanitizeForDisplay(explanation)

	if len(items) == 0 {
		items = randomSelection(wardrobe)
		explanation = RandomSelectionExplanation
	}

	return OutfitSelection{
		Items:        items,
		Alternatives: withoutItems(alternatives, items),
		Explanation:  explanation,
		Occasion:     occasion,
	}
}

// withoutItems drops from alternatives anything the minimum-fill pass
// promoted back into the final selection.
func withoutItems(alternatives, items []models.WardrobeItem) []models.WardrobeItem {
	inItems := map[uint]bool{}
	for _, it := range items {
		inItems[it.ID] = true
	}
	var out []models.WardrobeItem
	for _, a := range alternatives {
		if !inItems[a.ID] {
			out = append(out, a)
		}
	}
	return out
}

// resolveSelectedIDs maps model-provided ids onto real wardrobe items by
// exact match, silently dropping hallucinated or repeated ids.
func resolveSelectedIDs(ids []string, wardrobe []models.WardrobeItem) []models.WardrobeItem {
	var picked []models.WardrobeItem
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		for _, w := range wardrobe {
			if fmt.Sprint(w.ID) == id {
				picked = append(picked, w)
				seen[id] = true
				break
			}
		}
	}
	return picked
}

// dedupeByCategory keeps one item per normalized category, first seen wins,
// except for the top slot: when two or more shirt-like tops compete and the
// reply mentions palette colors, the color match wins the slot, and with no
// color match at all every competing top is displaced so the minimum-fill
// pass can pick something safer instead of guessing.
func dedupeByCategory(items []models.WardrobeItem, reply string) (kept, moved []models.WardrobeItem) {
	var tops []models.WardrobeItem
	for _, it := range items {
		if isTopCategory(it.Category) {
			tops = append(tops, it)
		}
	}

	// 0 means keep the first-seen top, like any other category.
	var winnerTopID uint
	evictAllTops := false
	if len(tops) >= 2 {
		colors := ExtractColors(reply)
		if len(colors) > 0 {
			evictAllTops = true
			for _, color := range colors {
				for _, t := range tops {
					if itemMatchesColor(t, color) {
						winnerTopID = t.ID
						evictAllTops = false
						break
					}
				}
				if winnerTopID != 0 {
					break
				}
			}
		}
	}

	seenCats := map[Category]bool{}
	for _, it := range items {
		if isTopCategory(it.Category) {
			if evictAllTops || (winnerTopID != 0 && it.ID != winnerTopID) {
				moved = append(moved, it)
				continue
			}
		}
		cat := NormalizeCategory(it.Category)
		if seenCats[cat] {
			moved = append(moved, it)
			continue
		}
		seenCats[cat] = true
		kept = append(kept, it)
	}
	return kept, moved
}

func evictOuterwear(items []models.WardrobeItem) (kept, moved []models.WardrobeItem) {
	for _, it := range items {
		if NormalizeCategory(it.Category) == CategoryOuterwear {
			moved = append(moved, it)
		} else {
			kept = append(kept, it)
		}
	}
	return kept, moved
}

// fillMinimum tops the selection up to min items using wardrobe iteration
// order, never repeating a normalized category already represented.
func fillMinimum(items []models.WardrobeItem, wardrobe []models.WardrobeItem, min int) []models.WardrobeItem {
	if len(items) >= min {
		return items
	}
	result := append([]models.WardrobeItem{}, items...)
	seen := map[Category]bool{}
	for _, it := range result {
		seen[NormalizeCategory(it.Category)] = true
	}
	for _, w := range wardrobe {
		if len(result) >= min {
			break
		}
		cat := NormalizeCategory(w.Category)
		if seen[cat] {
			continue
		}
		result = append(result, w)
		seen[cat] = true
	}
	return result
}

var formalShirtRegex = regexp.MustCompile(`\bshirt\b`)
var tShirtRegex = regexp.MustCompile(`t-?shirt`)

// heuristicSelect builds an outfit straight from the wardrobe and reply text
// when the model supplied no usable item ids: color matches first, then a
// top + bottom pairing, always one bottom when available, outerwear only on
// explicit request, and a formal shirt preference for interviews.
func heuristicSelect(reply string, wardrobe []models.WardrobeItem, occasion Occasion, jacketIntent JacketIntent) []models.WardrobeItem {
	if len(wardrobe) == 0 {
		return nil
	}
	colors := ExtractColors(reply)

	var candidates []models.WardrobeItem
	has := func(id uint) bool {
		for _, c := range candidates {
			if c.ID == id {
				return true
			}
		}
		return false
	}
	hasCategory := func(cat Category) bool {
		for _, c := range candidates {
			if NormalizeCategory(c.Category) == cat {
				return true
			}
		}
		return false
	}

	for _, color := range colors {
		for _, w := range wardrobe {
			if len(candidates) >= MaxItems {
				break
			}
			if itemMatchesColor(w, color) && !has(w.ID) {
				candidates = append(candidates, w)
			}
		}
		if len(candidates) >= MaxItems {
			break
		}
	}

	if len(candidates) < MaxItems {
		var firstTop, firstOther *models.WardrobeItem
		for i := range wardrobe {
			if isTopCategory(wardrobe[i].Category) {
				if firstTop == nil {
					firstTop = &wardrobe[i]
				}
			} else if firstOther == nil {
				firstOther = &wardrobe[i]
			}
		}
		if firstTop != nil && firstOther != nil {
			if !has(firstTop.ID) {
				candidates = append(candidates, *firstTop)
			}
			if len(candidates) < MaxItems && !has(firstOther.ID) {
				candidates = append(candidates, *firstOther)
			}
		}
	}

	// Always try to anchor the outfit with exactly one bottom, preferring a
	// color match from the reply.
	if !hasCategory(CategoryBottom) {
		var bottoms []models.WardrobeItem
		for _, w := range wardrobe {
			if NormalizeCategory(w.Category) == CategoryBottom {
				bottoms = append(bottoms, w)
			}
		}
		if len(bottoms) > 0 {
			chosen := bottoms[0]
			for _, color := range colors {
				found := false
				for _, b := range bottoms {
					if itemMatchesColor(b, color) {
						chosen = b
						found = true
						break
					}
				}
				if found {
					break
				}
			}
			if len(candidates) < MaxItems && !has(chosen.ID) {
				candidates = append(candidates, chosen)
			}
		}
	}

	if jacketIntent == JacketInclude && occasion != OccasionInterview && len(candidates) < MaxItems {
		var outers []models.WardrobeItem
		for _, w := range wardrobe {
			if NormalizeCategory(w.Category) == CategoryOuterwear {
				outers = append(outers, w)
			}
		}
		if len(outers) > 0 {
			chosen := outers[0]
			for _, o := range outers {
				matched := false
				for _, color := range colors {
					if itemMatchesColor(o, color) {
						matched = true
						break
					}
				}
				if matched {
					chosen = o
					break
				}
			}
			if !has(chosen.ID) {
				candidates = append(candidates, chosen)
			}
		}
	}

	// For interviews a proper shirt replaces whatever top is already in,
	// rather than sitting alongside it.
	if occasion == OccasionInterview {
		var formal *models.WardrobeItem
		for i, w := range wardrobe {
			name := strings.ToLower(w.Name)
			cat := strings.ToLower(w.Category)
			if (formalShirtRegex.MatchString(name) || formalShirtRegex.MatchString(cat)) &&
				!tShirtRegex.MatchString(name) && !tShirtRegex.MatchString(cat) {
				formal = &wardrobe[i]
				break
			}
		}
		if formal != nil && !has(formal.ID) {
			replaced := false
			for i, c := range candidates {
				if NormalizeCategory(c.Category) == CategoryTop {
					candidates[i] = *formal
					replaced = true
					break
				}
			}
			if !replaced && len(candidates) < MaxItems {
				candidates = append(candidates, *formal)
			}
		}
	}

	// Fill remaining slots with distinct normalized categories. Outerwear
	// stays out of this pass unless the user asked for it.
	seenCats := map[Category]bool{}
	for _, c := range candidates {
		seenCats[NormalizeCategory(c.Category)] = true
	}
	for _, w := range wardrobe {
		if len(candidates) >= MaxItems {
			break
		}
		cat := NormalizeCategory(w.Category)
		if seenCats[cat] {
			continue
		}
		if cat == CategoryOuterwear && jacketIntent != JacketInclude {
			continue
		}
		candidates = append(candidates, w)
		seenCats[cat] = true
	}

	if len(candidates) > MaxItems {
		candidates = candidates[:MaxItems]
	}
	return candidates
}

// randomSelection is the unconditional terminal fallback: a uniformly random
// subset of size min(MaxItems, len(wardrobe)).
func randomSelection(wardrobe []models.WardrobeItem) []models.WardrobeItem {
	if len(wardrobe) == 0 {
		return nil
	}
	shuffled := append([]models.WardrobeItem{}, wardrobe...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	n := MaxItems
	if len(shuffled) < n {
		n = len(shuffled)
	}
	return shuffled[:n]
}
