package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-backend/cursor"
	"chat-backend/domain"
	"chat-backend/errors"
	"chat-backend/mocks"
)

const maxContentLength = 100

func newServiceUnderTest(t *testing.T) (*ChatService, *mocks.MockIChatRepository, *mocks.MockIMessageLog, cursor.Codec) {
	t.Helper()
	ctrl := gomock.NewController(t)
	chats := mocks.NewMockIChatRepository(ctrl)
	messages := mocks.NewMockIMessageLog(ctrl)
	codec := cursor.NewCodec("test-secret")
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewChatService(log, chats, messages, codec, maxContentLength), chats, messages, codec
}

func Test_SendMessage_Unknown_Chat_Beats_Unknown_User(t *testing.T) {
	req := require.New(t)
	service, chats, _, _ := newServiceUnderTest(t)
	chatID := uuid.NewString()

	// Membership is never consulted when the chat does not exist
	chats.EXPECT().ChatExists(chatID).Return(false, nil).Times(1)

	_, err := service.SendMessage(context.Background(), domain.SendMessageCommand{
		ChatID: chatID, UserID: uuid.NewString(), Content: "hi",
	})
	req.ErrorIs(err, errors.ErrChatNotFound)
}

func Test_SendMessage_Non_Member(t *testing.T) {
	req := require.New(t)
	service, chats, _, _ := newServiceUnderTest(t)
	chatID := uuid.NewString()
	userID := uuid.NewString()

	chats.EXPECT().ChatExists(chatID).Return(true, nil)
	chats.EXPECT().IsMember(chatID, userID).Return(false, nil)

	_, err := service.SendMessage(context.Background(), domain.SendMessageCommand{
		ChatID: chatID, UserID: userID, Content: "hi",
	})
	req.ErrorIs(err, errors.ErrUserNotFound)
}

func Test_SendMessage_Content_Policy(t *testing.T) {
	req := require.New(t)
	service, chats, _, _ := newServiceUnderTest(t)
	chatID := uuid.NewString()
	userID := uuid.NewString()

	chats.EXPECT().ChatExists(chatID).Return(true, nil).Times(3)
	chats.EXPECT().IsMember(chatID, userID).Return(true, nil).Times(3)

	for _, content := range []string{"", "   \t\n", strings.Repeat("x", maxContentLength+1)} {
		_, err := service.SendMessage(context.Background(), domain.SendMessageCommand{
			ChatID: chatID, UserID: userID, Content: content,
		})
		req.ErrorIs(err, errors.ErrInvalidInput)
	}
}

func Test_SendMessage_Appends(t *testing.T) {
	req := require.New(t)
	service, chats, messages, _ := newServiceUnderTest(t)
	chatID := uuid.NewString()
	userID := uuid.NewString()

	chats.EXPECT().ChatExists(chatID).Return(true, nil)
	chats.EXPECT().IsMember(chatID, userID).Return(true, nil)
	messages.EXPECT().Append(chatID, userID, "hi").
		Return(domain.Message{Seq: 1, ChatID: chatID, AuthorID: userID, Content: "hi"}, nil)

	message, err := service.SendMessage(context.Background(), domain.SendMessageCommand{
		ChatID: chatID, UserID: userID, Content: "hi",
	})
	req.NoError(err)
	req.Equal(uint64(1), message.Seq)
}

func Test_GetMessages_Limit_Bounds(t *testing.T) {
	req := require.New(t)
	service, _, _, _ := newServiceUnderTest(t)

	for _, limit := range []int{0, -1, MaxLimit + 1} {
		_, _, err := service.GetMessages(context.Background(), domain.GetMessagesCommand{
			ChatID: uuid.NewString(), Limit: limit,
		})
		req.ErrorIs(err, errors.ErrInvalidInput)
	}
}

func Test_GetMessages_Rejects_Foreign_Cursor(t *testing.T) {
	req := require.New(t)
	service, chats, _, codec := newServiceUnderTest(t)
	chatID := uuid.NewString()

	chats.EXPECT().ChatExists(chatID).Return(true, nil)

	foreign := codec.Encode(uuid.NewString(), 5)
	_, _, err := service.GetMessages(context.Background(), domain.GetMessagesCommand{
		ChatID: chatID, Limit: 10, Cursor: lo.ToPtr(foreign),
	})
	req.ErrorIs(err, errors.ErrInvalidCursor)
}

func Test_GetMessages_Rejects_Garbage_Cursor(t *testing.T) {
	req := require.New(t)
	service, chats, _, _ := newServiceUnderTest(t)
	chatID := uuid.NewString()

	chats.EXPECT().ChatExists(chatID).Return(true, nil)

	_, _, err := service.GetMessages(context.Background(), domain.GetMessagesCommand{
		ChatID: chatID, Limit: 10, Cursor: lo.ToPtr("not-a-cursor"),
	})
	req.ErrorIs(err, errors.ErrInvalidCursor)
}

func Test_GetMessages_Emits_Next_Cursor_Only_When_More(t *testing.T) {
	req := require.New(t)
	service, chats, messages, codec := newServiceUnderTest(t)
	chatID := uuid.NewString()

	chats.EXPECT().ChatExists(chatID).Return(true, nil).Times(2)

	window := []domain.Message{
		{Seq: 1, ChatID: chatID, Content: "a"},
		{Seq: 2, ChatID: chatID, Content: "b"},
	}
	messages.EXPECT().ReadRange(chatID, uint64(0), 2).
		Return(domain.Page{Messages: window, HasMore: true}, nil)

	returned, nextCursor, err := service.GetMessages(context.Background(), domain.GetMessagesCommand{
		ChatID: chatID, Limit: 2,
	})
	req.NoError(err)
	req.Equal(window, returned)
	req.NotNil(nextCursor)

	cursorChatID, seq, err := codec.Decode(*nextCursor)
	req.NoError(err)
	req.Equal(chatID, cursorChatID)
	req.Equal(uint64(2), seq)

	// Resuming from that cursor, the log is exhausted: no next cursor
	messages.EXPECT().ReadRange(chatID, uint64(2), 2).
		Return(domain.Page{Messages: []domain.Message{{Seq: 3, ChatID: chatID}}}, nil)

	returned, nextCursor, err = service.GetMessages(context.Background(), domain.GetMessagesCommand{
		ChatID: chatID, Limit: 2, Cursor: nextCursor,
	})
	req.NoError(err)
	req.Len(returned, 1)
	req.Nil(nextCursor)
}

func Test_GetMessages_Unknown_Chat(t *testing.T) {
	req := require.New(t)
	service, chats, _, _ := newServiceUnderTest(t)
	chatID := uuid.NewString()

	chats.EXPECT().ChatExists(chatID).Return(false, nil)

	_, _, err := service.GetMessages(context.Background(), domain.GetMessagesCommand{
		ChatID: chatID, Limit: 10,
	})
	req.ErrorIs(err, errors.ErrChatNotFound)
}
