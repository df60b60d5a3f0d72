package outfit

import "strings"

// Category is the normalized bucket a free-text wardrobe category collapses
// into. Two items with different raw categories may share a Category.
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryDress     Category = "dress"
	CategoryOuterwear Category = "outerwear"
	CategoryFootwear  Category = "footwear"
	CategoryOther     Category = "other"
)

// categoryTable is evaluated top to bottom; the first matching substring wins.
var categoryTable = []struct {
	substr string
	cat    Category
}{
	{"shirt", CategoryTop},
	{"t-shirt", CategoryTop},
	{"tshirt", CategoryTop},
	{"top", CategoryTop},
	{"jumper", CategoryTop},
	{"blouse", CategoryTop},
	{"tee", CategoryTop},
	{"jean", CategoryBottom},
	{"pant", CategoryBottom},
	{"trouser", CategoryBottom},
	{"short", CategoryBottom},
	{"skirt", CategoryBottom},
	{"dress", CategoryDress},
	{"jacket", CategoryOuterwear},
	{"coat", CategoryOuterwear},
	{"blazer", CategoryOuterwear},
	{"sweater", CategoryTop},
	{"hoodie", CategoryTop},
	{"cardigan", CategoryTop},
	{"shoe", CategoryFootwear},
	{"sneaker", CategoryFootwear},
	{"boot", CategoryFootwear},
}

// NormalizeCategory maps a free-text wardrobe category into its Category
// bucket. Pure function of the input string.
func NormalizeCategory(raw string) Category {
	if raw == "" {
		return CategoryOther
	}
	c := strings.ToLower(raw)
	for _, entry := range categoryTable {
		if strings.Contains(c, entry.substr) {
			return entry.cat
		}
	}
	return CategoryOther
}

// isTopCategory is stricter than NormalizeCategory's top bucket: it covers
// only shirt-like garments, so sweaters and hoodies do not compete in the
// color tie-break for the single top slot.
func isTopCategory(raw string) bool {
	if raw == "" {
		return false
	}
	c := strings.ToLower(raw)
	for _, kw := range []string{"shirt", "t-shirt", "tshirt", "top", "jumper", "blouse"} {
		if strings.Contains(c, kw) {
			return true
		}
	}
	return false
}
