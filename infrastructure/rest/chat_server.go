// Package rest exposes the chat service over HTTP. It is a thin boundary:
// request binding and status mapping only, no domain rules.
package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"chat-backend/domain"
	"chat-backend/services"
)

type ChatServer struct {
	chatService services.IChatService
	log         *slog.Logger
}

func NewChatServer(log *slog.Logger, chatService services.IChatService) *ChatServer {
	return &ChatServer{chatService: chatService, log: log}
}

// NewRouter wires the /v1/chats routes onto a gin engine.
func NewRouter(log *slog.Logger, chatService services.IChatService) *gin.Engine {
	server := NewChatServer(log, chatService)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	v1 := engine.Group("/v1/chats")
	v1.POST("", server.CreateChat)
	v1.POST("/:chat_id/users", server.JoinChat)
	v1.POST("/:chat_id/messages", server.SendMessage)
	v1.GET("/:chat_id/messages", server.GetMessages)
	return engine
}

// CreateChat handles POST /v1/chats.
func (s *ChatServer) CreateChat(c *gin.Context) {
	var req CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadParameters(c, err)
		return
	}

	chat, err := s.chatService.CreateChat(c.Request.Context(), domain.CreateChatCommand{
		Name: req.ChatName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateChatResponse{ChatID: chat.ID})
}

// JoinChat handles POST /v1/chats/:chat_id/users.
func (s *ChatServer) JoinChat(c *gin.Context) {
	var req JoinChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadParameters(c, err)
		return
	}

	member, err := s.chatService.JoinChat(c.Request.Context(), domain.JoinChatCommand{
		ChatID:   c.Param("chat_id"),
		UserName: req.UserName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, JoinChatResponse{UserID: member.ID})
}

// SendMessage handles POST /v1/chats/:chat_id/messages?user_id=...
func (s *ChatServer) SendMessage(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		respondBadParameters(c, fmt.Errorf("user_id query parameter is required"))
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadParameters(c, err)
		return
	}

	message, err := s.chatService.SendMessage(c.Request.Context(), domain.SendMessageCommand{
		ChatID:  c.Param("chat_id"),
		UserID:  userID,
		Content: req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, SendMessageResponse{
		SeqID:     message.Seq,
		CreatedAt: message.CreatedAt,
	})
}

// GetMessages handles GET /v1/chats/:chat_id/messages?limit=...&from=...
// The from parameter is the opaque cursor from a previous page.
func (s *ChatServer) GetMessages(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		respondBadParameters(c, fmt.Errorf("limit query parameter must be an integer"))
		return
	}

	var from *string
	if raw := c.Query("from"); raw != "" {
		from = lo.ToPtr(raw)
	}

	messages, nextFrom, err := s.chatService.GetMessages(c.Request.Context(), domain.GetMessagesCommand{
		ChatID: c.Param("chat_id"),
		Limit:  limit,
		Cursor: from,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, GetMessagesResponse{
		Messages: toMessageResponses(messages),
		NextFrom: nextFrom,
	})
}

func toMessageResponses(messages []domain.Message) []MessageResponse {
	return lo.Map(messages, func(item domain.Message, _ int) MessageResponse {
		return MessageResponse{
			SeqID:     item.Seq,
			UserID:    item.AuthorID,
			Message:   item.Content,
			CreatedAt: item.CreatedAt,
		}
	})
}
