//go:generate go run go.uber.org/mock/mockgen -source=dialog.go -destination=../mocks/mock_dialog_repository.go -package=mocks
package repositories

import (
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IDialogRepository interface {
	CreateDialog(ctx context.Context, a, b domain.Identity) (domain.Dialog, error)
	FindDialog(ctx context.Context, a, b domain.Identity) ([]domain.Dialog, error)
	AppendMessage(ctx context.Context, dialog domain.Dialog, sender domain.Identity, text string) (domain.Message, error)
}

// DialogRepository is the persistence side of the relay: dialogs keyed
// by their unordered identity pair, messages keyed under their dialog.
// It satisfies the hub's store gateway contract.
type DialogRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewDialogRepository(db *badger.DB, log *slog.Logger) *DialogRepository {
	return &DialogRepository{db: db, log: log}
}

// dialogKey normalizes the pair so both orders address the same
// record.
func dialogKey(a, b domain.Identity) []byte {
	lo, hi := a, b
	if hi < lo {
		lo, hi = hi, lo
	}
	return []byte(fmt.Sprintf("dialog:%s:%s", lo, hi))
}

// CreateDialog mints the dialog record for a pair. Creating an
// existing pair returns the stored dialog unchanged.
func (r *DialogRepository) CreateDialog(_ context.Context, a, b domain.Identity) (domain.Dialog, error) {
	dialog := domain.Dialog{
		ID:        uuid.New(),
		A:         a,
		B:         b,
		CreatedAt: time.Now().UTC(),
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		key := dialogKey(a, b)
		if item, err := txn.Get(key); err == nil {
			return item.Value(func(val []byte) error {
				existing, err := DecodeDialogRecord(val)
				if err != nil {
					return err
				}
				dialog = existing
				return nil
			})
		}
		return txn.Set(key, encodeDialogRecord(dialog))
	})
	if err != nil {
		return domain.Dialog{}, err
	}
	return dialog, nil
}

// FindDialog returns the dialogs between a and b. The slice carries
// zero or one entry; absence is not an error.
func (r *DialogRepository) FindDialog(_ context.Context, a, b domain.Identity) ([]domain.Dialog, error) {
	var dialogs []domain.Dialog
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dialogKey(a, b))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			dialog, err := DecodeDialogRecord(val)
			if err != nil {
				return err
			}
			dialogs = append(dialogs, dialog)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return dialogs, nil
}

// AppendMessage persists a message in the dialog and returns the
// stored record. The key is "msg:{dialog_id}:{timestamp_padded}:{uuid}":
// 19-digit zero padding keeps keys chronologically sorted under a
// prefix scan, and the UUID disambiguates two messages landing on the
// same nanosecond.
func (r *DialogRepository) AppendMessage(_ context.Context, dialog domain.Dialog, sender domain.Identity, text string) (domain.Message, error) {
	msg := domain.Message{
		ID:        uuid.New(),
		DialogID:  dialog.ID,
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	key := fmt.Sprintf("msg:%s:%019d:%s", dialog.ID, msg.CreatedAt.UnixNano(), msg.ID)

	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), encodeMessageRecord(msg))
	})
	if err != nil {
		return domain.Message{}, err
	}
	r.log.Debug("message persisted", "dialog", dialog.ID, "sender", sender)
	return msg, nil
}
