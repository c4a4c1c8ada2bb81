//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"chat-backend/domain"
	"chat-backend/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatRepository interface {
	CreateChat(name string) (domain.Chat, error)
	ChatExists(chatID string) (bool, error)
	GetChat(chatID string) (domain.Chat, error)
	AddMember(chatID, userName string) (domain.Member, error)
	IsMember(chatID, userID string) (bool, error)
	ListMembers(chatID string) ([]domain.Member, error)
}

var validate = validator.New()

// NamePolicy bounds chat and user names. Charset is fixed: letters, digits,
// spaces and -_. — the length bounds come from configuration.
type NamePolicy struct {
	MinLength int
	MaxLength int
}

func (p NamePolicy) Validate(name string) error {
	tag := fmt.Sprintf("required,min=%d,max=%d", p.MinLength, p.MaxLength)
	if err := validate.Var(name, tag); err != nil {
		return fmt.Errorf("%w: name length outside [%d,%d]",
			errors.ErrInvalidInput, p.MinLength, p.MaxLength)
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' ||
			r == '-' || r == '_' || r == '.' {
			continue
		}
		return fmt.Errorf("%w: character %q not allowed in name", errors.ErrInvalidInput, r)
	}
	return nil
}

type ChatRepository struct {
	db     *badger.DB
	log    *slog.Logger
	policy NamePolicy
}

func NewChatRepository(db *badger.DB, log *slog.Logger, policy NamePolicy) ChatRepository {
	return ChatRepository{db: db, log: log, policy: policy}
}

// DiskChat is the stored representation of a chat record.
type DiskChat struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// DiskMember is the stored representation of a membership record.
// It is written under two keys: the name key enforces per-chat name
// uniqueness, the id key serves authorship lookups on send.
type DiskMember struct {
	ID       string    `json:"id"`
	ChatID   string    `json:"chat_id"`
	UserName string    `json:"user_name"`
	JoinedAt time.Time `json:"joined_at"`
}

func chatKey(chatID string) []byte {
	return []byte("chat:" + chatID)
}

func memberNameKey(chatID, userName string) []byte {
	return []byte("member:" + chatID + ":" + userName)
}

func memberIDKey(chatID, userID string) []byte {
	return []byte("memberid:" + chatID + ":" + userID)
}

// CreateChat allocates a server-generated chat id and persists the metadata
// record. The name must satisfy the configured NamePolicy.
func (c ChatRepository) CreateChat(name string) (domain.Chat, error) {
	if err := c.policy.Validate(name); err != nil {
		return domain.Chat{}, err
	}

	record := DiskChat{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return domain.Chat{}, fmt.Errorf("%w: marshal chat: %v", errors.ErrInternal, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chatKey(record.ID), data)
	})
	if err != nil {
		return domain.Chat{}, fmt.Errorf("%w: store chat: %v", errors.ErrInternal, err)
	}

	c.log.Info("chat created", "chat_id", record.ID, "name", name)
	return toChat(record), nil
}

func (c ChatRepository) ChatExists(chatID string) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(chatKey(chatID))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case goerrors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: chat lookup: %v", errors.ErrInternal, err)
	}
}

func (c ChatRepository) GetChat(chatID string) (domain.Chat, error) {
	var record DiskChat
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chatKey(chatID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	switch {
	case err == nil:
		return toChat(record), nil
	case goerrors.Is(err, badger.ErrKeyNotFound):
		return domain.Chat{}, errors.ErrChatNotFound
	default:
		return domain.Chat{}, fmt.Errorf("%w: chat lookup: %v", errors.ErrInternal, err)
	}
}

// AddMember joins a user name to a chat. Joining a name that is already
// present is a conflict (ErrAlreadyMember), never a silent overwrite: the
// duplicate check and both inserts run in a single transaction.
func (c ChatRepository) AddMember(chatID, userName string) (domain.Member, error) {
	if err := c.policy.Validate(userName); err != nil {
		return domain.Member{}, err
	}

	record := DiskMember{
		ID:       uuid.NewString(),
		ChatID:   chatID,
		UserName: userName,
		JoinedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(record)
	if err != nil {
		return domain.Member{}, fmt.Errorf("%w: marshal member: %v", errors.ErrInternal, err)
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(chatKey(chatID)); err != nil {
			if goerrors.Is(err, badger.ErrKeyNotFound) {
				return errors.ErrChatNotFound
			}
			return err
		}
		if _, err := txn.Get(memberNameKey(chatID, userName)); err == nil {
			return errors.ErrAlreadyMember
		} else if !goerrors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(memberNameKey(chatID, userName), data); err != nil {
			return err
		}
		return txn.Set(memberIDKey(chatID, record.ID), data)
	})
	switch {
	case err == nil:
	case goerrors.Is(err, errors.ErrChatNotFound), goerrors.Is(err, errors.ErrAlreadyMember):
		return domain.Member{}, err
	default:
		return domain.Member{}, fmt.Errorf("%w: store member: %v", errors.ErrInternal, err)
	}

	c.log.Info("member joined", "chat_id", chatID, "user_name", userName, "user_id", record.ID)
	return toMember(record), nil
}

// IsMember reports whether userID identifies a current member of the chat.
func (c ChatRepository) IsMember(chatID, userID string) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(memberIDKey(chatID, userID))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case goerrors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%w: member lookup: %v", errors.ErrInternal, err)
	}
}

// ListMembers returns the membership set of a chat in key (name) order.
func (c ChatRepository) ListMembers(chatID string) ([]domain.Member, error) {
	var records []DiskMember
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte("member:" + chatID + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record DiskMember
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: member scan: %v", errors.ErrInternal, err)
	}
	return lo.Map(records, func(r DiskMember, _ int) domain.Member {
		return toMember(r)
	}), nil
}

func toChat(record DiskChat) domain.Chat {
	return domain.Chat{
		ID:        record.ID,
		Name:      record.Name,
		CreatedAt: record.CreatedAt,
	}
}

func toMember(record DiskMember) domain.Member {
	return domain.Member{
		ID:       record.ID,
		ChatID:   record.ChatID,
		UserName: record.UserName,
		JoinedAt: record.JoinedAt,
	}
}
