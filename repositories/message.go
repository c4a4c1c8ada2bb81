//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_log.go -package=mocks
package repositories

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"chat-backend/domain"
	"chat-backend/errors"

	"github.com/dgraph-io/badger/v4"
)

type IMessageLog interface {
	Append(chatID, authorID, content string) (domain.Message, error)
	ReadRange(chatID string, afterSeq uint64, limit int) (domain.Page, error)
	LastSequence(chatID string) (uint64, error)
}

// appendRetries bounds retries on transient transaction conflicts. The
// counter and the message commit in one transaction, so a failed attempt
// never advances the sequence.
const appendRetries = 3

// MessageLog is the append-only per-chat message sequence.
//
// Keys are laid out as:
//
//	seq:{chat_id}            decimal counter, last assigned sequence
//	msg:{chat_id}:{seq}      message record, seq zero-padded to 20 digits
//
// The zero padding makes lexicographic key order equal sequence order, so a
// range read is a plain prefix scan from the requested position. Sequence
// assignment never looks at the clock.
type MessageLog struct {
	db    *badger.DB
	log   *slog.Logger
	locks sync.Map // chat id -> *sync.Mutex
}

func NewMessageLog(db *badger.DB, log *slog.Logger) *MessageLog {
	return &MessageLog{db: db, log: log}
}

// DiskMessage is the stored representation of one log entry.
type DiskMessage struct {
	Seq       uint64    `json:"seq"`
	ChatID    string    `json:"chat_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func counterKey(chatID string) []byte {
	return []byte("seq:" + chatID)
}

func messageKey(chatID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("msg:%s:%020d", chatID, seq))
}

func messagePrefix(chatID string) []byte {
	return []byte("msg:" + chatID + ":")
}

// lockFor returns the mutex serializing appends to one chat. Appends to
// different chats share nothing and proceed in parallel.
func (m *MessageLog) lockFor(chatID string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(chatID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Append assigns the next sequence number of the chat and stores the message.
// The counter read, counter advance and message insert run in a single
// transaction under the chat's mutex, so sequence numbers are gapless and
// never reused even under concurrent senders.
func (m *MessageLog) Append(chatID, authorID, content string) (domain.Message, error) {
	mu := m.lockFor(chatID)
	mu.Lock()
	defer mu.Unlock()

	var record DiskMessage
	var err error
	for attempt := 0; attempt < appendRetries; attempt++ {
		record, err = m.appendOnce(chatID, authorID, content)
		if err == nil {
			return toMessage(record), nil
		}
		if !goerrors.Is(err, badger.ErrConflict) {
			break
		}
		m.log.Warn("append conflict, retrying", "chat_id", chatID, "attempt", attempt+1)
	}
	return domain.Message{}, fmt.Errorf("%w: append: %v", errors.ErrInternal, err)
}

func (m *MessageLog) appendOnce(chatID, authorID, content string) (DiskMessage, error) {
	var record DiskMessage
	err := m.db.Update(func(txn *badger.Txn) error {
		last, err := readCounter(txn, chatID)
		if err != nil {
			return err
		}
		next := last + 1

		record = DiskMessage{
			Seq:       next,
			ChatID:    chatID,
			AuthorID:  authorID,
			Content:   content,
			CreatedAt: time.Now().UTC(),
		}
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err = txn.Set(counterKey(chatID), []byte(strconv.FormatUint(next, 10))); err != nil {
			return err
		}
		return txn.Set(messageKey(chatID, next), data)
	})
	return record, err
}

// ReadRange returns up to limit messages with sequence number strictly
// greater than afterSeq, ascending. An empty or unknown chat yields an empty
// page, not an error; existence is the caller's concern. HasMore is probed by
// looking one key past the returned window, never by counting rows.
func (m *MessageLog) ReadRange(chatID string, afterSeq uint64, limit int) (domain.Page, error) {
	var page domain.Page
	if limit <= 0 {
		return page, nil
	}

	err := m.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(chatID)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(messageKey(chatID, afterSeq+1)); it.ValidForPrefix(prefix); it.Next() {
			if len(page.Messages) == limit {
				page.HasMore = true
				return nil
			}
			var record DiskMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			page.Messages = append(page.Messages, toMessage(record))
		}
		return nil
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("%w: range read: %v", errors.ErrInternal, err)
	}
	return page, nil
}

// LastSequence returns the last assigned sequence number, 0 for an empty log.
func (m *MessageLog) LastSequence(chatID string) (uint64, error) {
	var last uint64
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		last, err = readCounter(txn, chatID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counter read: %v", errors.ErrInternal, err)
	}
	return last, nil
}

func readCounter(txn *badger.Txn, chatID string) (uint64, error) {
	item, err := txn.Get(counterKey(chatID))
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var last uint64
	err = item.Value(func(val []byte) error {
		last, err = strconv.ParseUint(string(val), 10, 64)
		return err
	})
	return last, err
}

func toMessage(record DiskMessage) domain.Message {
	return domain.Message{
		Seq:       record.Seq,
		ChatID:    record.ChatID,
		AuthorID:  record.AuthorID,
		Content:   record.Content,
		CreatedAt: record.CreatedAt,
	}
}
