package models

type StyleProfileIn struct {
	HeightRange      string   `json:"height_range" validate:"omitempty,max=50"`
	BodyType         string   `json:"body_type" validate:"omitempty,max=50"`
	SkinTone         string   `json:"skin_tone" validate:"omitempty,max=50"`
	FavouriteColours []string `json:"favourite_colours" validate:"omitempty,max=10,dive,max=30"`
	Region           string   `json:"region" validate:"omitempty,max=60"`
}

type StyleProfileOut struct {
	Id               uint     `json:"id"`
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	AvatarURL        string   `json:"avatar_url"`
	Subscription     string   `json:"subscription"`
	HeightRange      string   `json:"height_range"`
	BodyType         string   `json:"body_type"`
	SkinTone         string   `json:"skin_tone"`
	FavouriteColours []string `json:"favourite_colours"`
	Region           string   `json:"region"`
}
