package domain

// CreateChatCommand carries a validated chat creation intent.
type CreateChatCommand struct {
	Name string
}

// JoinChatCommand adds a user name to an existing chat.
type JoinChatCommand struct {
	ChatID   string
	UserName string
}

// SendMessageCommand appends one message to a chat log.
type SendMessageCommand struct {
	ChatID  string
	UserID  string
	Content string
}

// GetMessagesCommand reads one page of a chat log.
// Cursor is the opaque token from a previous page, nil for the beginning.
type GetMessagesCommand struct {
	ChatID string
	Limit  int
	Cursor *string
}
