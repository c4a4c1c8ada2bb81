// Package internal carries operator-facing plumbing that is not part of the
// chat domain: the Badger key inspector used during development.
package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Kind      string
	ChatID    string
	Ref       string
	Timestamp string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow

type PageData struct {
	Prefix string
	Items  []InspectRow
}

// StartDebugServer serves a read-only HTML view over the raw key space.
// The prefix query parameter selects a key family (chat:, member:, msg:, seq:).
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{Prefix: prefix}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// DefaultMapper renders a row for each key family of the chat layout.
func DefaultMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Kind:      "RAW",
		ChatID:    "-",
		Ref:       "-",
		Timestamp: "--:--:--",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return row
	}
	row.ChatID = shorten(parts[1])

	var record struct {
		Name      string    `json:"name"`
		UserName  string    `json:"user_name"`
		Content   string    `json:"content"`
		Seq       uint64    `json:"seq"`
		CreatedAt time.Time `json:"created_at"`
		JoinedAt  time.Time `json:"joined_at"`
	}

	switch parts[0] {
	case "chat":
		row.Kind = "CHAT"
		if json.Unmarshal(val, &record) == nil {
			row.Detail = record.Name
			row.Timestamp = record.CreatedAt.Format("15:04:05")
		}
	case "member", "memberid":
		row.Kind = "MEMBER"
		if len(parts) == 3 {
			row.Ref = shorten(parts[2])
		}
		if json.Unmarshal(val, &record) == nil {
			row.Detail = record.UserName
			row.Timestamp = record.JoinedAt.Format("15:04:05")
		}
	case "seq":
		row.Kind = "COUNTER"
		row.Detail = string(val)
	case "msg":
		row.Kind = "MESSAGE"
		if len(parts) == 3 {
			row.Ref = strings.TrimLeft(parts[2], "0")
		}
		if json.Unmarshal(val, &record) == nil {
			row.Detail = record.Content
			row.Timestamp = record.CreatedAt.Format("15:04:05")
		}
	}
	return row
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
