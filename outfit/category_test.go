package outfit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]Category{
		"Shirt":          CategoryTop,
		"t-shirt":        CategoryTop,
		"Graphic Tee":    CategoryTop,
		"Hoodie":         CategoryTop,
		"Sweater":        CategoryTop,
		"Jeans":          CategoryBottom,
		"Cargo Pants":    CategoryBottom,
		"Denim Shorts":   CategoryBottom,
		"Summer Dress":   CategoryDress,
		"Bomber Jacket":  CategoryOuterwear,
		"Trench Coat":    CategoryOuterwear,
		"Running Shoes":  CategoryFootwear,
		"Chelsea Boots":  CategoryFootwear,
		"Silk Scarf":     CategoryOther,
		"":               CategoryOther,
		"CROP TOP":       CategoryTop,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeCategory(raw), "raw %q", raw)
	}
}

func TestNormalizeCategoryOrderSensitive(t *testing.T) {
	// "shirt" is checked before "short", so a literal "shirt" can never land
	// in the bottom bucket even though it contains no other top keyword.
	assert.Equal(t, CategoryTop, NormalizeCategory("shirt"))
	assert.Equal(t, CategoryBottom, NormalizeCategory("short"))
}

func TestIsTopCategory(t *testing.T) {
	assert.True(t, isTopCategory("Shirt"))
	assert.True(t, isTopCategory("tshirt"))
	assert.True(t, isTopCategory("Blouse"))
	assert.True(t, isTopCategory("Tank Top"))

	// Knitwear shares the top bucket but never competes for the top slot.
	assert.False(t, isTopCategory("Sweater"))
	assert.False(t, isTopCategory("Hoodie"))
	assert.False(t, isTopCategory("Jeans"))
	assert.False(t, isTopCategory(""))
}
