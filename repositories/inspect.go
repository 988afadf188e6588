package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// EntryRow is a readable view of one key of the embedded store.
type EntryRow struct {
	Key    string
	Kind   string
	At     string
	Detail string
}

// Inspect walks the keys of db starting with prefix and describes each of them.
func Inspect(db *badger.DB, prefix string, visit func(EntryRow) error) error {
	return db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if err := item.Value(func(value []byte) error {
				return visit(DescribeEntry(key, value))
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// DescribeEntry never fails: a value it cannot decode is shown by its size.
func DescribeEntry(key, value []byte) EntryRow {
	row := EntryRow{
		Key:    string(key),
		Kind:   "RAW",
		At:     "--:--:--",
		Detail: "Size: " + strconv.Itoa(len(value)) + " bytes",
	}
	switch {
	case bytes.HasPrefix(key, []byte("msg:")):
		row.Kind = "MESSAGE"
		// The timestamp and the id close the key; ids in the pair may hold ':'.
		parts := strings.Split(string(key), ":")
		if len(parts) >= 4 {
			if nanos, err := strconv.ParseInt(parts[len(parts)-2], 10, 64); err == nil {
				row.At = time.Unix(0, nanos).UTC().Format(time.DateTime)
			}
		}
		var m diskMessage
		if err := json.Unmarshal(value, &m); err == nil {
			row.Detail = fmt.Sprintf("%s -> %s: %q", m.SenderID, m.RecipientID, m.Content)
			if m.Read {
				row.Detail += " read"
			}
			if m.DeletedBySender || m.DeletedByRecipient {
				row.Detail += fmt.Sprintf(" deleted(sender=%t, recipient=%t)", m.DeletedBySender, m.DeletedByRecipient)
			}
		}
	case bytes.HasPrefix(key, []byte("peer:")):
		row.Kind = "PEER"
		row.Detail = strings.TrimPrefix(string(key), "peer:")
		if user, peer, ok := splitPeerKey(key); ok {
			row.Detail = user + " -> " + peer
		}
	case bytes.HasPrefix(key, []byte("profile:")):
		row.Kind = "PROFILE"
		var p struct {
			Username string `json:"username"`
		}
		if err := json.Unmarshal(value, &p); err == nil {
			row.Detail = p.Username
		}
	}
	return row
}

// splitPeerKey reverses peerKey.
func splitPeerKey(key []byte) (user, peer string, ok bool) {
	rest := strings.TrimPrefix(string(key), "peer:")
	size, rest, found := strings.Cut(rest, ":")
	if !found {
		return "", "", false
	}
	n, err := strconv.Atoi(size)
	if err != nil || n < 0 || len(rest) < n+1 || rest[n] != ':' {
		return "", "", false
	}
	return rest[:n], rest[n+1:], true
}
