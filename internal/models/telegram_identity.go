package models

import (
	"fmt"
	"strings"
)

// TelegramIdentity is the cross-organization record of a Telegram user.
type TelegramIdentity struct {
	Base
	TgUserID  int64  `gorm:"not null;uniqueIndex" json:"tg_user_id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	FullName  string `json:"full_name,omitempty"`
}

// DisplayName picks the best available label for a Telegram user:
// full name, then first and last name, then username, then "User <id>".
// It never returns an empty string.
func DisplayName(fullName, firstName, lastName, username string, tgUserID int64) string {
	if name := strings.TrimSpace(fullName); name != "" {
		return name
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{firstName, lastName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u := strings.TrimSpace(username); u != "" {
		return u
	}
	if tgUserID != 0 {
		return fmt.Sprintf("User %d", tgUserID)
	}
	return "Telegram user"
}
