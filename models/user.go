package models

import (
	"time"

	"github.com/lib/pq"
)

type UserAccount struct {
	JsonModel
	Name   string `json:"name"`
	Email  string `json:"email" gorm:"unique"`
	Banned bool   `gorm:"default:false" json:"-"`
	LastIp string `json:"-"`
	//"STARTED_AUTH", "FINISHED_AUTH"
	Status    string   `json:"-"`
	GoogleID  string   `json:"-"`
	AppleID   string   `json:"-"`
	UTMSource string   `json:"utm_source"`
	Platform  Platform `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`

	Subscription        string     `gorm:"default:free" json:"subscription"`
	ExpirationDate      *time.Time `json:"-"`
	ConfirmedDeleteDate *time.Time `json:"-"`
	// per-user override of the default daily chat turn allowance
	EnforcedDailyChatLimit *int32 `json:"enforced_daily_chat_limit"`

	ReceiveNotifications bool `json:"receive_notifications"`
	IsSuperadmin         bool `json:"is_superadmin"`

	// user app image/avatar
	AvatarURL string `json:"avatar_url"`

	// style profile attributes injected into every stylist prompt
	HeightRange      string         `json:"height_range"`
	BodyType         string         `json:"body_type"`
	SkinTone         string         `json:"skin_tone"`
	FavouriteColours pq.StringArray `gorm:"type:text[]" json:"favourite_colours"`
	Region           string         `json:"region"`

	WardrobeItems []WardrobeItem `gorm:"foreignKey:OwnerID" json:"-"`
	ChatSessions  []ChatSession  `gorm:"foreignKey:OwnerID" json:"-"`
}

type UserPushToken struct {
	JsonModel
	UserAccountID uint
	UserAccount   UserAccount `json:"user_account"`
	Platform      Platform    `sql:"type:ENUM('ios', 'android', 'web')" json:"platform"`
	Token         string      `json:"token"`
	Active        bool        `gorm:"default:false" json:"-"`
}

type UserPushIn struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type UserSettingsIn struct {
	ReceiveNotifications bool `json:"receive_notifications"`
}
