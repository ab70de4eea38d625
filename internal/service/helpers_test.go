package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vbonduro/fieldtech/internal/auth"
	"github.com/vbonduro/fieldtech/internal/config"
	"github.com/vbonduro/fieldtech/internal/db"
	"github.com/vbonduro/fieldtech/internal/domain"
	"github.com/vbonduro/fieldtech/internal/events"
	"github.com/vbonduro/fieldtech/internal/harp"
	"github.com/vbonduro/fieldtech/internal/mailer"
	"github.com/vbonduro/fieldtech/internal/mocks"
	"github.com/vbonduro/fieldtech/internal/photostore"
	"github.com/vbonduro/fieldtech/internal/store"
	"github.com/vbonduro/fieldtech/internal/vision"
)

var (
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pdfHeader  = []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n")
)

// stubVision returns a canned nameplate.
type stubVision struct {
	result *vision.Nameplate
	err    error
}

func (s *stubVision) Analyze(_ context.Context, r io.Reader, _ string) (*vision.Nameplate, error) {
	_, _ = io.Copy(io.Discard, r)
	return s.result, s.err
}

// memBlobs is an in-memory photostore.Store.
type memBlobs struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	mimes   map[string]string
	saveErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{blobs: make(map[string][]byte), mimes: make(map[string]string)}
}

func (m *memBlobs) Save(_ context.Context, prefix, mimeType string, r io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := prefix + "/" + uuid.Must(uuid.NewV4()).String() + photostore.Ext(mimeType)
	m.blobs[key] = data
	m.mimes[key] = mimeType
	return key, nil
}

func (m *memBlobs) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), m.mimes[key], nil
}

func (m *memBlobs) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	delete(m.mimes, key)
	return nil
}

func (m *memBlobs) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) add(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) find(collection string, action events.Action) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Collection == collection && e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

type testEnv struct {
	ctx    context.Context
	stores *store.Stores
	svc    *Services
	blobs  *memBlobs
	vision *stubVision
	events *recorder
	mailer mailer.Mailer
}

type envOption func(*Deps)

func withMailer(m mailer.Mailer) envOption {
	return func(d *Deps) { d.Mailer = m }
}

func withBilling(b config.Billing) envOption {
	return func(d *Deps) { d.Billing = b }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	ctrl := gomock.NewController(t)
	pub := mocks.NewMockPublisher(ctrl)
	rec := &recorder{}
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Do(rec.add).AnyTimes()

	checklist, err := harp.LoadChecklist()
	require.NoError(t, err)

	env := &testEnv{
		ctx:    context.Background(),
		stores: store.New(d),
		blobs:  newMemBlobs(),
		vision: &stubVision{},
		events: rec,
	}
	deps := Deps{
		Stores:    env.stores,
		Blobs:     env.blobs,
		Vision:    env.vision,
		Events:    pub,
		Tokens:    auth.NewTokens("test-secret-test-secret-test-secret", time.Hour),
		Checklist: checklist,
		Billing: config.Billing{
			InvoicePrefix: "INV-",
			PaymentTerms:  30 * 24 * time.Hour,
			CompanyName:   "Northside Dental Service",
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	env.mailer = deps.Mailer
	env.svc = New(deps)
	return env
}

func (e *testEnv) client(t *testing.T, name string) *domain.Client {
	t.Helper()
	c, err := e.svc.Clients.Create(e.ctx, &domain.Client{Name: name})
	require.NoError(t, err)
	return c
}

func (e *testEnv) equipment(t *testing.T, clientID uuid.UUID, typ domain.EquipmentType) *domain.Equipment {
	t.Helper()
	eq, err := e.svc.Equipment.Create(e.ctx, &domain.Equipment{
		ClientID:            clientID,
		Type:                typ,
		Manufacturer:        "Planmeca",
		Model:               "ProX",
		SerialNumber:        "PX-" + uuid.Must(uuid.NewV4()).String()[:8],
		Location:            "Operatory 2",
		ServiceIntervalDays: 180,
	})
	require.NoError(t, err)
	return eq
}

func (e *testEnv) user(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := e.svc.Users.Register(e.ctx, NewUser{
		Email:    email,
		Name:     "User " + email,
		Role:     role,
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) part(t *testing.T, number string, onHand, threshold int, price string) *domain.Part {
	t.Helper()
	p, err := e.svc.Parts.Create(e.ctx, &domain.Part{
		PartNumber:       number,
		Name:             "Part " + number,
		UnitPrice:        decimal.RequireFromString(price),
		QuantityOnHand:   onHand,
		ReorderThreshold: threshold,
		ReorderQuantity:  10,
	})
	require.NoError(t, err)
	return p
}

func isInvalid(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput)
}

func ptr[T any](v T) *T {
	return &v
}
