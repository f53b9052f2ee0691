package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"league-platform/internal/model"
	"league-platform/internal/token"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type memoryUsers struct {
	mu      sync.Mutex
	byID    map[int64]model.User
	touched map[int64]time.Time
}

func newMemoryUsers(users ...model.User) *memoryUsers {
	store := &memoryUsers{byID: map[int64]model.User{}, touched: map[int64]time.Time{}}
	for _, u := range users {
		store.byID[u.ID] = u
	}
	return store
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.LastLoginAt = &at
	m.byID[id] = u
	m.touched[id] = at
	return nil
}

type memoryLinks struct {
	mu         sync.Mutex
	byToken    map[string]model.MagicLink
	nextID     int64
	createErrs []error
}

func newMemoryLinks() *memoryLinks {
	return &memoryLinks{byToken: map[string]model.MagicLink{}}
}

func (m *memoryLinks) Create(_ context.Context, link model.MagicLink) (model.MagicLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		return model.MagicLink{}, err
	}
	if _, exists := m.byToken[link.Token]; exists {
		return model.MagicLink{}, model.ErrMagicLinkCollision
	}
	m.nextID++
	link.ID = m.nextID
	link.CreatedAt = testNow
	m.byToken[link.Token] = link
	return link, nil
}

func (m *memoryLinks) FindByToken(_ context.Context, raw string) (model.MagicLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.byToken[raw]
	if !ok {
		return model.MagicLink{}, model.ErrMagicLinkNotFound
	}
	return link, nil
}

func (m *memoryLinks) MarkUsed(_ context.Context, raw string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.byToken[raw]
	if !ok || link.UsedAt != nil {
		return false, nil
	}
	link.UsedAt = &at
	m.byToken[raw] = link
	return true, nil
}

func (m *memoryLinks) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for raw, link := range m.byToken {
		if link.ExpiresAt.Before(before) {
			delete(m.byToken, raw)
			n++
		}
	}
	return n, nil
}

func (m *memoryLinks) put(link model.MagicLink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[link.Token] = link
}

func (m *memoryLinks) all() []model.MagicLink {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.MagicLink, 0, len(m.byToken))
	for _, link := range m.byToken {
		out = append(out, link)
	}
	return out
}

type sentMail struct {
	to        string
	link      string
	expiresAt time.Time
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) SendMagicLink(_ context.Context, to string, link string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, link: link, expiresAt: expiresAt})
	return m.err
}

type memoryAudit struct {
	mu      sync.Mutex
	entries []model.AuditEntry
	err     error
}

func (m *memoryAudit) Log(_ context.Context, entry model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAudit) Query(_ context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.AuditEntry(nil), m.entries...), model.Meta{Page: query.Page, Limit: query.Limit, Total: len(m.entries)}, nil
}

func (m *memoryAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Action+":"+e.Status)
	}
	return out
}

type memoryGrants struct {
	systemRole model.SystemRole
	leagues    []model.LeagueGrantRow
	clubs      []model.ClubGrantRow
	err        error
}

func (m memoryGrants) SystemRole(context.Context, int64) (model.SystemRole, error) {
	return m.systemRole, m.err
}

func (m memoryGrants) LeagueGrants(context.Context, int64) ([]model.LeagueGrantRow, error) {
	return m.leagues, m.err
}

func (m memoryGrants) ClubGrants(context.Context, int64) ([]model.ClubGrantRow, error) {
	return m.clubs, m.err
}

var errStoreDown = errors.New("store down")

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()

	codec, err := token.NewCodec(token.Options{
		Algorithm: token.HS256,
		Secret:    "service-test-secret",
		Now:       func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return codec
}

func alice() model.User {
	return model.User{
		ID:          17,
		Email:       "alice@example.com",
		DisplayName: "Alice",
		SystemRole:  model.SystemRoleUser,
		CreatedAt:   testNow.Add(-24 * time.Hour),
		UpdatedAt:   testNow.Add(-24 * time.Hour),
	}
}
