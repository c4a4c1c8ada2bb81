package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-backend/domain"
	"chat-backend/errors"
	"chat-backend/mocks"
)

func newRouterUnderTest(t *testing.T) (*gin.Engine, *mocks.MockIChatService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)
	chatService := mocks.NewMockIChatService(ctrl)
	return NewRouter(logs.GetLoggerFromLevel(slog.LevelDebug), chatService), chatService
}

func doJSON(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func Test_CreateChat_Created(t *testing.T) {
	req := require.New(t)
	router, chatService := newRouterUnderTest(t)

	chatID := uuid.NewString()
	chatService.EXPECT().
		CreateChat(gomock.Any(), domain.CreateChatCommand{Name: "team"}).
		Return(domain.Chat{ID: chatID, Name: "team"}, nil)

	recorder := doJSON(router, http.MethodPost, "/v1/chats", `{"chat_name":"team"}`)
	req.Equal(http.StatusCreated, recorder.Code)

	var response CreateChatResponse
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	req.Equal(chatID, response.ChatID)
}

func Test_CreateChat_Missing_Name(t *testing.T) {
	req := require.New(t)
	router, _ := newRouterUnderTest(t)

	recorder := doJSON(router, http.MethodPost, "/v1/chats", `{}`)
	req.Equal(http.StatusBadRequest, recorder.Code)

	var envelope ErrorEnvelope
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &envelope))
	req.Equal("bad-parameters", envelope.Error.Code)
}

func Test_JoinChat_Conflict_On_Duplicate_Name(t *testing.T) {
	req := require.New(t)
	router, chatService := newRouterUnderTest(t)
	chatID := uuid.NewString()

	chatService.EXPECT().
		JoinChat(gomock.Any(), domain.JoinChatCommand{ChatID: chatID, UserName: "alice"}).
		Return(domain.Member{}, errors.ErrAlreadyMember)

	recorder := doJSON(router, http.MethodPost, "/v1/chats/"+chatID+"/users", `{"user_name":"alice"}`)
	req.Equal(http.StatusConflict, recorder.Code)

	var envelope ErrorEnvelope
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &envelope))
	req.Equal("already-member", envelope.Error.Code)
}

func Test_SendMessage_Requires_User_ID(t *testing.T) {
	req := require.New(t)
	router, _ := newRouterUnderTest(t)

	recorder := doJSON(router, http.MethodPost,
		"/v1/chats/"+uuid.NewString()+"/messages", `{"message":"hi"}`)
	req.Equal(http.StatusBadRequest, recorder.Code)
}

func Test_SendMessage_Unknown_User_Is_404(t *testing.T) {
	req := require.New(t)
	router, chatService := newRouterUnderTest(t)
	chatID := uuid.NewString()
	userID := uuid.NewString()

	chatService.EXPECT().
		SendMessage(gomock.Any(), domain.SendMessageCommand{ChatID: chatID, UserID: userID, Content: "hi"}).
		Return(domain.Message{}, errors.ErrUserNotFound)

	recorder := doJSON(router, http.MethodPost,
		"/v1/chats/"+chatID+"/messages?user_id="+userID, `{"message":"hi"}`)
	req.Equal(http.StatusNotFound, recorder.Code)

	var envelope ErrorEnvelope
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &envelope))
	req.Equal("user-not-found", envelope.Error.Code)
}

func Test_GetMessages_Requires_Integer_Limit(t *testing.T) {
	req := require.New(t)
	router, _ := newRouterUnderTest(t)

	recorder := doJSON(router, http.MethodGet,
		"/v1/chats/"+uuid.NewString()+"/messages?limit=plenty", "")
	req.Equal(http.StatusBadRequest, recorder.Code)
}

func Test_GetMessages_Passes_Cursor_And_Renders_Page(t *testing.T) {
	req := require.New(t)
	router, chatService := newRouterUnderTest(t)
	chatID := uuid.NewString()

	next := "opaque-token"
	chatService.EXPECT().
		GetMessages(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.GetMessagesCommand) ([]domain.Message, *string, error) {
			req.Equal(chatID, cmd.ChatID)
			req.Equal(2, cmd.Limit)
			req.NotNil(cmd.Cursor)
			req.Equal("prev-token", *cmd.Cursor)
			return []domain.Message{
				{Seq: 3, ChatID: chatID, AuthorID: "alice", Content: "hi"},
				{Seq: 4, ChatID: chatID, AuthorID: "bob", Content: "hello"},
			}, &next, nil
		})

	recorder := doJSON(router, http.MethodGet,
		"/v1/chats/"+chatID+"/messages?limit=2&from=prev-token", "")
	req.Equal(http.StatusOK, recorder.Code)

	var response GetMessagesResponse
	req.NoError(json.Unmarshal(recorder.Body.Bytes(), &response))
	req.Len(response.Messages, 2)
	req.Equal(uint64(3), response.Messages[0].SeqID)
	req.Equal("alice", response.Messages[0].UserID)
	req.NotNil(response.NextFrom)
	req.Equal(next, *response.NextFrom)
}
