package events

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []Event
}

func (r *recorder) Publish(_ context.Context, e Event) {
	r.got = append(r.got, e)
}

func TestFanoutDeliversToAll(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	f := Fanout{a, Discard{}, b}

	e := Event{Collection: "clients", Action: ActionCreate, ID: uuid.Must(uuid.NewV4())}
	f.Publish(context.Background(), e)

	assert.Equal(t, []Event{e}, a.got)
	assert.Equal(t, []Event{e}, b.got)
}
