package models

import (
	"strings"
	"time"
)

// Member represents a user known to currently be reachable in a chat. The row
// is replaced wholesale on every sighting and deleted when the user leaves.
type Member struct {
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Username  string    `json:"username" db:"username"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FullName joins the member's first and last name. Members with no name
// fields at all get the literal fallback "member".
func (m *Member) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(m.FirstName) + " " + strings.TrimSpace(m.LastName))
	if name == "" {
		return "member"
	}
	return name
}

// Handle returns the "@username" form, or an empty string when the member has
// no username.
func (m *Member) Handle() string {
	if m.Username == "" {
		return ""
	}
	return "@" + m.Username
}
