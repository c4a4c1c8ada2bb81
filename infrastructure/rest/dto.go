package rest

import "time"

// Request and response bodies of the /v1/chats API.

type CreateChatRequest struct {
	ChatName string `json:"chat_name" binding:"required"`
}

type CreateChatResponse struct {
	ChatID string `json:"chat_id"`
}

type JoinChatRequest struct {
	UserName string `json:"user_name" binding:"required"`
}

type JoinChatResponse struct {
	UserID string `json:"user_id"`
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type SendMessageResponse struct {
	SeqID     uint64    `json:"seq_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageResponse struct {
	SeqID     uint64    `json:"seq_id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type GetMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
	NextFrom *string           `json:"next_from,omitempty"`
}
