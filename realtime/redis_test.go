package realtime

import (
	"chat-dm/domain/event"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChangeCodec(t *testing.T) {
	req := require.New(t)
	change := event.MessageUpdate(msg("m1", "U1", "U2"))

	payload, err := encodeChange(change)
	req.NoError(err)
	req.Contains(string(payload), `"type":"UPDATE"`)
	req.Contains(string(payload), `"sender_id":"U1"`)

	decoded, err := decodeChange(payload)
	req.NoError(err)
	req.Equal(event.MessageUpdateType, decoded.Type)
	req.Equal("m1", decoded.Message.ID)
	req.True(change.Message.CreatedAt.Equal(decoded.Message.CreatedAt))
}

func TestChangeCodec_Rejects_Unknown_Types(t *testing.T) {
	req := require.New(t)

	_, err := decodeChange([]byte(`{"type":"DELETE","record":{"id":"m1"}}`))
	req.Error(err)

	_, err = decodeChange([]byte(`not json`))
	req.Error(err)

	_, err = encodeChange(event.MessageChange{Type: "SOMETHING"})
	req.Error(err)
}

func TestChannelFor(t *testing.T) {
	require.Equal(t, "messages:changes:U1", ChannelFor("U1"))
}
