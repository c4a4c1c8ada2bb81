// Command inspect dumps the chat store as tables: chats, members, and the
// message log of one chat. Read-only; safe to run against a live data dir.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", "./data", "Path to badger DB")
	chatID := flag.String("chat", "", "Chat id whose message log to dump")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	if err := dumpChats(db); err != nil {
		log.Fatal("Error while scanning chats: ", err)
	}
	if *chatID != "" {
		if err := dumpMessages(db, *chatID); err != nil {
			log.Fatal("Error while scanning messages: ", err)
		}
	}
}

func dumpChats(db *badger.DB) error {
	color.Green.Println("\nCHATS")
	table := newTable("ID", "Name", "Created At", "Last Seq")

	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("chat:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record struct {
				ID        string `json:"id"`
				Name      string `json:"name"`
				CreatedAt string `json:"created_at"`
			}
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &record)
			})
			if err != nil {
				fmt.Printf("Error unmarshaling key %s: %v\n", it.Item().Key(), err)
				continue
			}
			table.Append([]string{record.ID, record.Name, record.CreatedAt, lastSeq(txn, record.ID)})
		}
		table.Render()
		return nil
	})
}

func dumpMessages(db *badger.DB, chatID string) error {
	color.Green.Printf("\nMESSAGES %s\n", chatID)
	table := newTable("Seq", "Author", "Content", "Created At")

	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("msg:" + chatID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record struct {
				Seq       uint64 `json:"seq"`
				AuthorID  string `json:"author_id"`
				Content   string `json:"content"`
				CreatedAt string `json:"created_at"`
			}
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &record)
			})
			if err != nil {
				fmt.Printf("Error unmarshaling key %s: %v\n", it.Item().Key(), err)
				continue
			}
			table.Append([]string{
				strconv.FormatUint(record.Seq, 10),
				shorten(record.AuthorID),
				record.Content,
				record.CreatedAt,
			})
		}
		table.Render()
		return nil
	})
}

func lastSeq(txn *badger.Txn, chatID string) string {
	item, err := txn.Get([]byte("seq:" + chatID))
	if err != nil {
		return "0"
	}
	var last string
	_ = item.Value(func(v []byte) error {
		last = string(v)
		return nil
	})
	return last
}

func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
