package kafka

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/fieldtech/internal/events"
)

func TestProducerMessage(t *testing.T) {
	p := NewProducer(slog.New(slog.NewTextHandler(io.Discard, nil)), []string{"localhost:9092"}, "fieldtech.events")
	t.Cleanup(p.Close)

	id := uuid.Must(uuid.NewV4())
	e := events.Event{
		Collection: "invoices",
		Action:     events.ActionUpdate,
		ID:         id,
		At:         time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Data:       map[string]string{"status": "paid"},
	}

	msg, err := p.message(e)
	require.NoError(t, err)
	assert.Equal(t, "fieldtech.events", msg.Topic)
	assert.Equal(t, id.String(), string(msg.Key))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "invoices", string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "update", decoded["action"])
	assert.Equal(t, id.String(), decoded["id"])
}
