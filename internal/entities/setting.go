package entities

import (
	"time"
)

// Setting is one row of the device-local key/value store. Values are JSON
// documents, or raw strings written by older clients.
type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known local setting keys
const (
	SettingKeyTheme           = "torah-theme"
	SettingKeyFontSettings    = "torah-font-color-settings"
	SettingKeyDisplaySettings = "torah-display-settings"
	SettingKeySession         = "torah-session"
)
