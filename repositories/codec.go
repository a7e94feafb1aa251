package repositories

import (
	"chat-relay/domain"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Record values are stored in protobuf wire format, assembled with
// protowire. The records are three flat structs, which keeps the
// encoding hand-rolled instead of generated; field numbers below are
// part of the on-disk format and must not be reused.
//
// user:    1=username  2=password_hash  3=created_at(unixnano)
// dialog:  1=id  2=a  3=b  4=created_at(unixnano)
// message: 1=id  2=dialog_id  3=sender  4=text  5=created_at(unixnano)

type UserRecord struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

func encodeUserRecord(u UserRecord) []byte {
	var b []byte
	b = appendString(b, 1, u.Username)
	b = appendString(b, 2, u.PasswordHash)
	b = appendInt64(b, 3, u.CreatedAt.UnixNano())
	return b
}

func DecodeUserRecord(b []byte) (UserRecord, error) {
	var u UserRecord
	err := walkFields(b, func(num protowire.Number, s string, v int64) {
		switch num {
		case 1:
			u.Username = s
		case 2:
			u.PasswordHash = s
		case 3:
			u.CreatedAt = time.Unix(0, v).UTC()
		}
	})
	return u, err
}

func encodeDialogRecord(d domain.Dialog) []byte {
	var b []byte
	b = appendString(b, 1, d.ID.String())
	b = appendString(b, 2, string(d.A))
	b = appendString(b, 3, string(d.B))
	b = appendInt64(b, 4, d.CreatedAt.UnixNano())
	return b
}

// DecodeDialogRecord is exported for the inspection tooling.
func DecodeDialogRecord(b []byte) (domain.Dialog, error) {
	var d domain.Dialog
	var rawID string
	err := walkFields(b, func(num protowire.Number, s string, v int64) {
		switch num {
		case 1:
			rawID = s
		case 2:
			d.A = domain.Identity(s)
		case 3:
			d.B = domain.Identity(s)
		case 4:
			d.CreatedAt = time.Unix(0, v).UTC()
		}
	})
	if err != nil {
		return domain.Dialog{}, err
	}
	d.ID, err = uuid.Parse(rawID)
	if err != nil {
		return domain.Dialog{}, err
	}
	return d, nil
}

func encodeMessageRecord(m domain.Message) []byte {
	var b []byte
	b = appendString(b, 1, m.ID.String())
	b = appendString(b, 2, m.DialogID.String())
	b = appendString(b, 3, string(m.Sender))
	b = appendString(b, 4, m.Text)
	b = appendInt64(b, 5, m.CreatedAt.UnixNano())
	return b
}

// DecodeMessageRecord is exported for the inspection tooling.
func DecodeMessageRecord(b []byte) (domain.Message, error) {
	var m domain.Message
	var rawID, rawDialogID string
	err := walkFields(b, func(num protowire.Number, s string, v int64) {
		switch num {
		case 1:
			rawID = s
		case 2:
			rawDialogID = s
		case 3:
			m.Sender = domain.Identity(s)
		case 4:
			m.Text = s
		case 5:
			m.CreatedAt = time.Unix(0, v).UTC()
		}
	})
	if err != nil {
		return domain.Message{}, err
	}
	if m.ID, err = uuid.Parse(rawID); err != nil {
		return domain.Message{}, err
	}
	if m.DialogID, err = uuid.Parse(rawDialogID); err != nil {
		return domain.Message{}, err
	}
	return m, nil
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// walkFields iterates the wire-format fields in b, calling visit with
// either the string or the int64 value depending on the wire type.
// Unknown fields are skipped, so adding fields stays backward
// compatible.
func walkFields(b []byte, visit func(num protowire.Number, s string, v int64)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.BytesType:
			s, n := protowire.ConsumeString(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, s, 0)
			b = b[n:]
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			visit(num, "", int64(v))
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
