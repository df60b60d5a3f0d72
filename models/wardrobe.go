package models

type WardrobeItem struct {
	JsonModel
	Name string `json:"name"`
	// free text, e.g. "Blue Denim Jacket", "Jeans"; normalization happens in the outfit package
	Category string      `json:"category"`
	Owner    UserAccount `json:"-"`
	OwnerID  uint        `json:"-"`
	// R2 object key of the item photo
	ImageURL *string `json:"image_url"`
}
