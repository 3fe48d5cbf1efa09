package entities

import (
	"time"
)

// UserSettings is the cloud row holding one column per setting category for
// a user. Column values are JSON documents; nil means never written.
type UserSettings struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            string    `gorm:"uniqueIndex;size:64" json:"user_id"`
	Theme             *string   `gorm:"type:text" json:"theme"`
	FontSettings      *string   `gorm:"type:text" json:"font_settings"`
	DisplaySettings   *string   `gorm:"type:text" json:"display_settings"`
	ShowSharedContent *string   `gorm:"type:text" json:"show_shared_content"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (UserSettings) TableName() string {
	return "user_settings"
}

// Cloud table and column names
const (
	TableUserSettings = "user_settings"

	ColumnTheme             = "theme"
	ColumnFontSettings      = "font_settings"
	ColumnDisplaySettings   = "display_settings"
	ColumnShowSharedContent = "show_shared_content"
)

// UserSettingsColumns lists the writable columns of user_settings.
var UserSettingsColumns = []string{
	ColumnTheme,
	ColumnFontSettings,
	ColumnDisplaySettings,
	ColumnShowSharedContent,
}

// IsUserSettingsColumn reports whether column is a writable settings column.
func IsUserSettingsColumn(column string) bool {
	for _, c := range UserSettingsColumns {
		if c == column {
			return true
		}
	}
	return false
}
