//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"league-platform/internal/config"
	"league-platform/internal/database"
	"league-platform/internal/handler"
	"league-platform/internal/middleware"
	"league-platform/internal/repository"
	"league-platform/internal/router"
	"league-platform/internal/service"
	"league-platform/internal/token"
)

type capturingMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *capturingMailer) SendMagicLink(_ context.Context, to string, link string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[to] = link
	return nil
}

func (m *capturingMailer) tokenFor(t *testing.T, email string) string {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[email]
	require.True(t, ok, "no link mailed to %s", email)
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

type testEnv struct {
	server *httptest.Server
	db     *database.DB
	mailer *capturingMailer
	codec  *token.Codec
}

// newTestEnv wires the real stack against TEST_DATABASE_URL.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	codec, err := token.NewCodec(token.Options{Algorithm: token.HS256, Secret: "integration-secret"})
	require.NoError(t, err)

	users := repository.NewUserRepository(db.Pool)
	audit := service.NewAuditService(repository.NewAuditRepository(db.Pool))
	mailer := &capturingMailer{links: map[string]string{}}
	magicLinks := service.NewMagicLinkService(users, repository.NewMagicLinkRepository(db.Pool), mailer, codec, audit, "https://app.example.com/auth/verify")
	sessions := service.NewSessionService(users, service.NewContextBuilder(repository.NewGrantRepository(db.Pool)), codec, audit)

	cfg := &config.Config{
		RequestTimeout:   10 * time.Second,
		CORSOrigins:      []string{"*"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
	}

	server := httptest.NewServer(router.New(cfg, middleware.NewAuthenticator(codec), router.Handlers{
		Auth:  handler.NewAuthHandler(magicLinks, sessions),
		JWKS:  handler.NewJWKSHandler(token.NewStaticKeyProvider(nil, nil, "")),
		Org:   handler.NewOrgHandler(repository.NewLeagueRepository(db.Pool), repository.NewClubRepository(db.Pool)),
		Audit: handler.NewAuditHandler(audit),
	}))
	t.Cleanup(server.Close)

	return &testEnv{server: server, db: db, mailer: mailer, codec: codec}
}

type seeded struct {
	userID   int64
	email    string
	leagueID int64
	clubID   int64
	otherID  int64
}

// seedCoach creates a league with two clubs and a user coaching the first.
func (e *testEnv) seedCoach(t *testing.T) seeded {
	t.Helper()

	ctx := context.Background()
	s := seeded{email: "coach-" + uuid.NewString() + "@example.com"}

	require.NoError(t, e.db.Pool.QueryRow(ctx,
		`INSERT INTO users (email, display_name) VALUES ($1, 'Coach') RETURNING id`, s.email).Scan(&s.userID))
	require.NoError(t, e.db.Pool.QueryRow(ctx,
		`INSERT INTO leagues (name) VALUES ($1) RETURNING id`, "League "+s.email).Scan(&s.leagueID))
	require.NoError(t, e.db.Pool.QueryRow(ctx,
		`INSERT INTO clubs (league_id, name) VALUES ($1, 'Tigers') RETURNING id`, s.leagueID).Scan(&s.clubID))

	var otherLeague int64
	require.NoError(t, e.db.Pool.QueryRow(ctx,
		`INSERT INTO leagues (name) VALUES ($1) RETURNING id`, "Other "+s.email).Scan(&otherLeague))
	require.NoError(t, e.db.Pool.QueryRow(ctx,
		`INSERT INTO clubs (league_id, name) VALUES ($1, 'Wolves') RETURNING id`, otherLeague).Scan(&s.otherID))

	_, err := e.db.Pool.Exec(ctx,
		`INSERT INTO club_roles (user_id, club_id, role) VALUES ($1, $2, 'coach')`, s.userID, s.clubID)
	require.NoError(t, err)

	return s
}

func postJSON(t *testing.T, url string, payload any, bearer string) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return doRequest(t, req)
}

func getAuthed(t *testing.T, url string, bearer string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+bearer)

	return doRequest(t, req)
}

func doRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}
