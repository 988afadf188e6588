package repositories

import (
	"chat-dm/domain"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInspect_Describes_Every_Kind(t *testing.T) {
	req := require.New(t)
	store := newEmbeddedStore(t)
	req.NoError(store.PutProfile(context.Background(), domain.Profile{ID: "U2", Username: "bob"}))
	send(t, store, "U1", "U2", "hello")
	req.NoError(store.ClearConversation(context.Background(), "U1", "U2"))

	var rows []EntryRow
	req.NoError(Inspect(store.db, "", func(row EntryRow) error {
		rows = append(rows, row)
		return nil
	}))

	kinds := map[string]EntryRow{}
	for _, row := range rows {
		kinds[row.Kind] = row
	}
	req.Contains(kinds, "MESSAGE")
	req.Contains(kinds, "PEER")
	req.Contains(kinds, "PROFILE")
	req.Equal("bob", kinds["PROFILE"].Detail)
	req.Contains([]string{"U1 -> U2", "U2 -> U1"}, kinds["PEER"].Detail)
	req.Contains(kinds["MESSAGE"].Detail, `U1 -> U2: "hello"`)
	req.Contains(kinds["MESSAGE"].Detail, "deleted(sender=true, recipient=false)")
	req.Equal("2026-03-01 10:00:00", kinds["MESSAGE"].At)
}

func TestInspect_Prefix(t *testing.T) {
	req := require.New(t)
	store := newEmbeddedStore(t)
	send(t, store, "U1", "U2", "hello")

	count := 0
	req.NoError(Inspect(store.db, "profile:", func(EntryRow) error {
		count++
		return nil
	}))
	req.Zero(count)
}

func TestDescribeEntry_Unknown_Value(t *testing.T) {
	req := require.New(t)

	row := DescribeEntry([]byte("msg:2:U1|2:U2:abc:m1"), []byte("not json"))

	req.Equal("MESSAGE", row.Kind)
	req.Equal("--:--:--", row.At)
	req.Equal("Size: 8 bytes", row.Detail)

	req.Equal("RAW", DescribeEntry([]byte("other"), nil).Kind)
	req.Equal("9:malformed", DescribeEntry([]byte("peer:9:malformed"), nil).Detail)
}
