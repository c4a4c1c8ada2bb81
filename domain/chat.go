// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"
)

// Chat is a named container for messages and members.
// Immutable after creation except for its membership set.
type Chat struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Member associates a user name with a chat. A user name is unique
// within its chat; users do not exist outside a membership.
type Member struct {
	ID       string
	ChatID   string
	UserName string
	JoinedAt time.Time
}
