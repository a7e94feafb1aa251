package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"chat-relay/internal"
	"chat-relay/projection"
	"chat-relay/repositories"
)

// Inspects the relay's badger store: dialogs under "dialog:", messages
// under "msg:". Opens read-only so it can run next to a live server.
// Three modes: a flat table dump (default), an ordered timeline for
// one dialog (-dialog), or the HTML inspector (-http).
func main() {
	dbPath := flag.String("db", "/tmp/chat-relay", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan (msg:, dialog: or user:)")
	dialogID := flag.String("dialog", "", "Dialog UUID: print its messages in order")
	httpPort := flag.Int("http", 0, "Serve the HTML inspector on this port instead of dumping")
	flag.Parse()

	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	switch {
	case *httpPort != 0:
		fmt.Printf("Inspector on http://localhost:%d/inspect\n", *httpPort)
		log.Fatal(internal.StartDebugServer(db, *httpPort, nil))
	case *dialogID != "":
		if err := dumpTimeline(db, *dialogID); err != nil {
			log.Fatal("Timeline failed: ", err)
		}
	default:
		if err := dumpTable(db, *prefix); err != nil {
			log.Fatal("Scan failed: ", err)
		}
	}
}

func dumpTable(db *badger.DB, prefix string) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Type", "Who", "Detail", "Created"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				row := internal.MapRecord(key, v)
				table.Append([]string{shorten(row.Key), row.Type, row.Who, row.Detail, row.Created})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	table.Render()
	return nil
}

func dumpTimeline(db *badger.DB, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid dialog id %q: %w", rawID, err)
	}
	timeline := projection.NewTimeline(id)

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte("msg:" + id.String())
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				msg, err := repositories.DecodeMessageRecord(v)
				if err != nil {
					return err
				}
				timeline.Consume(msg)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, msg := range timeline.Messages() {
		fmt.Printf("%s  %-16s %s\n", msg.CreatedAt.Format("2006-01-02 15:04:05"), msg.Sender, msg.Text)
	}
	return nil
}

func shorten(key string) string {
	if len(key) <= 40 {
		return key
	}
	return strings.TrimSpace(key[:37]) + "..."
}
