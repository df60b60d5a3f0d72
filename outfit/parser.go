// Package outfit turns untrusted stylist completions into a safe, displayable
// outfit selection against the user's real wardrobe inventory.
package outfit

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// AssistantResponse is the best-effort structure extracted from a raw stylist
// completion. Reply is always populated; everything else is optional.
type AssistantResponse struct {
	Reply           string   `json:"reply"`
	Explain         string   `json:"explain"`
	Tags            []string `json:"tags"`
	ImagePrompt     string   `json:"image_prompt"`
	SelectedItemIDs []string `json:"selected_item_ids"`
}

var fencedBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
var inlineSelectionRegex = regexp.MustCompile(`(?is)\{.*?"selected_item_ids"\s*:\s*\[[^\]]*\].*\}\s*$`)

const parseFailureSentinel = "unable to parse json"

// parseAccumulator merges values from multiple parsed JSON candidates,
// first writer wins. Each absorb returns a new accumulator value.
type parseAccumulator struct {
	reply       string
	explain     string
	imagePrompt string
	tags        []string
	selectedIDs []string
}

func (acc parseAccumulator) absorb(obj map[string]interface{}) parseAccumulator {
	if acc.reply == "" {
		if s, ok := obj["reply"].(string); ok {
			acc.reply = s
		}
	}
	if acc.explain == "" {
		if s, ok := obj["explain"].(string); ok {
			acc.explain = s
		}
	}
	if acc.imagePrompt == "" {
		if s, ok := obj["image_prompt"].(string); ok {
			acc.imagePrompt = s
		}
	}
	if len(acc.tags) == 0 {
		acc.tags = stringSlice(obj["tags"])
	}
	if len(acc.selectedIDs) == 0 {
		acc.selectedIDs = stringSlice(obj["selected_item_ids"])
	}
	return acc
}

// stringSlice coerces a decoded JSON array into strings; the model sometimes
// emits item ids as bare numbers.
func stringSlice(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, el := range arr {
		switch t := el.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		}
	}
	return out
}

// Parse extracts structured fields from a raw stylist completion. It is total:
// any input, including garbage and the empty string, yields a response whose
// Reply is populated from whatever plain text survives JSON stripping.
func Parse(raw string) AssistantResponse {
	var candidates []map[string]interface{}
	for _, m := range fencedBlockRegex.FindAllStringSubmatch(raw, -1) {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(m[1]), &obj); err == nil && obj != nil {
			candidates = append(candidates, obj)
		}
	}

	// The selection object is instructed to arrive as a bare trailing line;
	// strip it from the human-visible text when it decodes.
	residual := raw
	if loc := inlineSelectionRegex.FindStringIndex(raw); loc != nil {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(raw[loc[0]:loc[1]]), &obj); err == nil && obj != nil {
			if _, isList := obj["selected_item_ids"].([]interface{}); isList {
				residual = raw[:loc[0]]
			}
			candidates = append(candidates, obj)
		}
	}

	acc := parseAccumulator{}
	for _, obj := range candidates {
		acc = acc.absorb(obj)
	}

	reply := acc.reply
	if reply == "" {
		reply = residual
	}
	reply = fencedBlockRegex.ReplaceAllString(reply, "")
	reply = inlineSelectionRegex.ReplaceAllString(reply, "")
	reply = strings.TrimSpace(reply)

	// Never surface the parser's own failure language to the end user.
	explain := acc.explain
	if explain == "" || strings.Contains(strings.ToLower(explain), parseFailureSentinel) {
		explain = reply
	}

	tags := acc.tags
	if tags == nil {
		tags = []string{}
	}

	return AssistantResponse{
		Reply:           reply,
		Explain:         explain,
		Tags:            tags,
		ImagePrompt:     acc.imagePrompt,
		SelectedItemIDs: acc.selectedIDs,
	}
}
