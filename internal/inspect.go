// Package internal hosts the badger inspector: a small HTML debug
// server for browsing relay records next to a live process.
package internal

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/repositories"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key     string
	Type    string
	Who     string
	Detail  string
	Created string
}

type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

const createdLayout = "2006-01-02 15:04:05"

// StartDebugServer serves /inspect on the given port and blocks. The
// prefix query parameter selects the key namespace (msg:, dialog:,
// user:).
func StartDebugServer(db *badger.DB, port int, statsProvider StatsProvider) error {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, MapRecord(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	return http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
}

// MapRecord renders one stored record as an inspector row, decoding it
// according to its key namespace. Undecodable values degrade to a RAW
// row instead of failing the page.
func MapRecord(key string, val []byte) InspectRow {
	switch {
	case strings.HasPrefix(key, "msg:"):
		msg, err := repositories.DecodeMessageRecord(val)
		if err != nil {
			break
		}
		return InspectRow{
			Key:     key,
			Type:    "MSG",
			Who:     string(msg.Sender),
			Detail:  msg.Text,
			Created: msg.CreatedAt.Format(createdLayout),
		}
	case strings.HasPrefix(key, "dialog:"):
		dialog, err := repositories.DecodeDialogRecord(val)
		if err != nil {
			break
		}
		return InspectRow{
			Key:     key,
			Type:    "DIALOG",
			Who:     fmt.Sprintf("%s <-> %s", dialog.A, dialog.B),
			Detail:  dialog.ID.String(),
			Created: dialog.CreatedAt.Format(createdLayout),
		}
	case strings.HasPrefix(key, "user:"):
		user, err := repositories.DecodeUserRecord(val)
		if err != nil {
			break
		}
		return InspectRow{
			Key:     key,
			Type:    "USER",
			Who:     user.Username,
			Detail:  "password hash withheld",
			Created: user.CreatedAt.Format(createdLayout),
		}
	}
	return InspectRow{
		Key:     key,
		Type:    "RAW",
		Who:     "--------",
		Detail:  fmt.Sprintf("Size: %d bytes", len(val)),
		Created: "--:--:--",
	}
}
