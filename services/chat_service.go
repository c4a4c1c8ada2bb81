//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"chat-backend/cursor"
	"chat-backend/domain"
	"chat-backend/errors"
	"chat-backend/repositories"

	"github.com/samber/lo"
)

// Page size bounds for GetMessages, from the external contract.
const (
	MinLimit = 1
	MaxLimit = 1000
)

type IChatService interface {
	CreateChat(ctx context.Context, cmd domain.CreateChatCommand) (domain.Chat, error)
	JoinChat(ctx context.Context, cmd domain.JoinChatCommand) (domain.Member, error)
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	GetMessages(ctx context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, *string, error)
}

// ChatService orchestrates the chat store, the message log and the cursor
// codec. Each call is a short-lived transaction: check existence, delegate,
// translate the outcome into a domain result or error kind.
type ChatService struct {
	chats            repositories.IChatRepository
	messages         repositories.IMessageLog
	codec            cursor.Codec
	log              *slog.Logger
	maxContentLength int
}

func NewChatService(log *slog.Logger, chats repositories.IChatRepository,
	messages repositories.IMessageLog, codec cursor.Codec, maxContentLength int) *ChatService {
	return &ChatService{
		chats:            chats,
		messages:         messages,
		codec:            codec,
		log:              log,
		maxContentLength: maxContentLength,
	}
}

func (s *ChatService) CreateChat(_ context.Context, cmd domain.CreateChatCommand) (domain.Chat, error) {
	return s.chats.CreateChat(cmd.Name)
}

func (s *ChatService) JoinChat(_ context.Context, cmd domain.JoinChatCommand) (domain.Member, error) {
	return s.chats.AddMember(cmd.ChatID, cmd.UserName)
}

// SendMessage checks chat existence before membership, so a send to an
// unknown chat is always ChatNotFound rather than UserNotFound.
func (s *ChatService) SendMessage(_ context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
	exists, err := s.chats.ChatExists(cmd.ChatID)
	if err != nil {
		return domain.Message{}, err
	}
	if !exists {
		return domain.Message{}, errors.ErrChatNotFound
	}

	member, err := s.chats.IsMember(cmd.ChatID, cmd.UserID)
	if err != nil {
		return domain.Message{}, err
	}
	if !member {
		return domain.Message{}, errors.ErrUserNotFound
	}

	if err = s.validateContent(cmd.Content); err != nil {
		return domain.Message{}, err
	}

	message, err := s.messages.Append(cmd.ChatID, cmd.UserID, cmd.Content)
	if err != nil {
		return domain.Message{}, err
	}
	s.log.Debug("message appended", "chat_id", cmd.ChatID, "seq", message.Seq)
	return message, nil
}

// GetMessages reads one page of the chat log. A provided cursor must decode
// and belong to the requested chat; a token minted for another chat is
// rejected as invalid, never silently reinterpreted.
func (s *ChatService) GetMessages(_ context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, *string, error) {
	if cmd.Limit < MinLimit || cmd.Limit > MaxLimit {
		return nil, nil, fmt.Errorf("%w: limit %d outside [%d,%d]",
			errors.ErrInvalidInput, cmd.Limit, MinLimit, MaxLimit)
	}

	exists, err := s.chats.ChatExists(cmd.ChatID)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, errors.ErrChatNotFound
	}

	var afterSeq uint64
	if cmd.Cursor != nil {
		cursorChatID, seq, err := s.codec.Decode(*cmd.Cursor)
		if err != nil {
			return nil, nil, err
		}
		if cursorChatID != cmd.ChatID {
			return nil, nil, fmt.Errorf("%w: cursor belongs to another chat", errors.ErrInvalidCursor)
		}
		afterSeq = seq
	}

	page, err := s.messages.ReadRange(cmd.ChatID, afterSeq, cmd.Limit)
	if err != nil {
		return nil, nil, err
	}

	var nextCursor *string
	if page.HasMore {
		nextCursor = lo.ToPtr(s.codec.Encode(cmd.ChatID, page.LastSeq()))
	}
	return page.Messages, nextCursor, nil
}

func (s *ChatService) validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: empty message", errors.ErrInvalidInput)
	}
	if length := utf8.RuneCountInString(content); length > s.maxContentLength {
		return fmt.Errorf("%w: message length %d exceeds %d",
			errors.ErrInvalidInput, length, s.maxContentLength)
	}
	return nil
}
