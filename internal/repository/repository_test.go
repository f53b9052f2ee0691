package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-platform/internal/model"
	"league-platform/internal/rbac"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

var userRowColumns = []string{"id", "email", "display_name", "system_role", "last_login_at", "created_at", "updated_at"}

func TestUserRepository_FindByEmail(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE lower(email) = lower($1)")).
		WithArgs("alice@example.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(int64(17), "alice@example.com", "Alice", model.SystemRoleSuperAdmin, nil, created, created))

	u, err := repo.FindByEmail(context.Background(), "  alice@example.com ")
	require.NoError(t, err)
	assert.Equal(t, int64(17), u.ID)
	assert.Equal(t, "Alice", u.DisplayName)
	assert.Equal(t, model.SystemRoleSuperAdmin, u.SystemRole)
	assert.Nil(t, u.LastLoginAt)
	assert.Equal(t, created, u.CreatedAt)
}

func TestUserRepository_FindByIDNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 404)
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepository_TouchLastLogin(t *testing.T) {
	mock := newMock(t)
	repo := NewUserRepository(mock)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_at = $2")).
		WithArgs(int64(17), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_at = $2")).
		WithArgs(int64(18), at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.TouchLastLogin(context.Background(), 17, at))
	require.ErrorIs(t, repo.TouchLastLogin(context.Background(), 18, at), model.ErrUserNotFound)
}

func TestMagicLinkRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewMagicLinkRepository(mock)
	expires := time.Date(2024, 3, 1, 12, 15, 0, 0, time.UTC)
	created := expires.Add(-15 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO magic_link_tokens")).
		WithArgs(int64(17), "alice@example.com", "tok-1", expires).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(9), created))

	link, err := repo.Create(context.Background(), model.MagicLink{
		UserID: 17, Email: "alice@example.com", Token: "tok-1", ExpiresAt: expires,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), link.ID)
	assert.Equal(t, created, link.CreatedAt)
	assert.Equal(t, "tok-1", link.Token)
}

func TestMagicLinkRepository_CreateCollision(t *testing.T) {
	mock := newMock(t)
	repo := NewMagicLinkRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO magic_link_tokens")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.Create(context.Background(), model.MagicLink{UserID: 17, Token: "dup"})
	require.ErrorIs(t, err, model.ErrMagicLinkCollision)
}

func TestMagicLinkRepository_FindByToken(t *testing.T) {
	mock := newMock(t)
	repo := NewMagicLinkRepository(mock)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "user_id", "email", "token", "expires_at", "used_at", "created_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM magic_link_tokens WHERE token = $1")).
		WithArgs("tok-used").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(1), int64(17), "alice@example.com", "tok-used", now.Add(time.Minute), &now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM magic_link_tokens WHERE token = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	link, err := repo.FindByToken(context.Background(), "tok-used")
	require.NoError(t, err)
	require.NotNil(t, link.UsedAt)
	assert.True(t, link.IsUsed())
	assert.Equal(t, now, *link.UsedAt)

	_, err = repo.FindByToken(context.Background(), "missing")
	require.ErrorIs(t, err, model.ErrMagicLinkNotFound)
}

func TestMagicLinkRepository_MarkUsedIsConditional(t *testing.T) {
	mock := newMock(t)
	repo := NewMagicLinkRepository(mock)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("SET used_at = $2 WHERE token = $1 AND used_at IS NULL")).
		WithArgs("tok", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(regexp.QuoteMeta("SET used_at = $2 WHERE token = $1 AND used_at IS NULL")).
		WithArgs("tok", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	won, err := repo.MarkUsed(context.Background(), "tok", at)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkUsed(context.Background(), "tok", at)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestMagicLinkRepository_DeleteExpired(t *testing.T) {
	mock := newMock(t)
	repo := NewMagicLinkRepository(mock)
	before := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM magic_link_tokens WHERE expires_at < $1")).
		WithArgs(before).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeleteExpired(context.Background(), before)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGrantRepository(t *testing.T) {
	mock := newMock(t)
	repo := NewGrantRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT system_role FROM users WHERE id = $1")).
		WithArgs(int64(17)).
		WillReturnRows(pgxmock.NewRows([]string{"system_role"}).AddRow(model.SystemRoleUser))
	mock.ExpectQuery(regexp.QuoteMeta("FROM league_roles lr")).
		WithArgs(int64(17)).
		WillReturnRows(pgxmock.NewRows([]string{"role", "id", "name"}).
			AddRow(model.RoleLeagueAdmin, int64(7), "North League"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM club_roles cr")).
		WithArgs(int64(17)).
		WillReturnRows(pgxmock.NewRows([]string{"role", "id", "name", "league_id"}).
			AddRow(model.RoleCoach, int64(42), "Tigers", int64(7)).
			AddRow(model.RoleParent, int64(51), "Lions", int64(9)))

	role, err := repo.SystemRole(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, model.SystemRoleUser, role)

	leagues, err := repo.LeagueGrants(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, []model.LeagueGrantRow{{Role: model.RoleLeagueAdmin, LeagueID: 7, LeagueName: "North League"}}, leagues)

	clubs, err := repo.ClubGrants(context.Background(), 17)
	require.NoError(t, err)
	assert.Equal(t, []model.ClubGrantRow{
		{Role: model.RoleCoach, ClubID: 42, ClubName: "Tigers", LeagueID: 7},
		{Role: model.RoleParent, ClubID: 51, ClubName: "Lions", LeagueID: 9},
	}, clubs)
}

func TestGrantRepository_SystemRoleUnknownUser(t *testing.T) {
	mock := newMock(t)
	repo := NewGrantRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT system_role FROM users")).WillReturnError(pgx.ErrNoRows)

	_, err := repo.SystemRole(context.Background(), 1)
	require.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestLeagueRepository_ListAccessible(t *testing.T) {
	t.Run("scoped", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM leagues WHERE true AND id IN ($1, $2) ORDER BY name, id")).
			WithArgs(int64(7), int64(9)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(7), "North").AddRow(int64(9), "South"))

		leagues, err := NewLeagueRepository(mock).ListAccessible(context.Background(), rbac.AccessSet{IDs: []int64{7, 9}})
		require.NoError(t, err)
		assert.Equal(t, []model.League{{ID: 7, Name: "North"}, {ID: 9, Name: "South"}}, leagues)
	})

	t.Run("empty set", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("WHERE true AND 1 = 0")).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name"}))

		leagues, err := NewLeagueRepository(mock).ListAccessible(context.Background(), rbac.AccessSet{})
		require.NoError(t, err)
		assert.Empty(t, leagues)
	})

	t.Run("unrestricted", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM leagues WHERE true  ORDER BY name, id")).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name"}).AddRow(int64(1), "All"))

		leagues, err := NewLeagueRepository(mock).ListAccessible(context.Background(), rbac.AccessSet{All: true})
		require.NoError(t, err)
		assert.Len(t, leagues, 1)
	})
}

func TestClubRepository(t *testing.T) {
	mock := newMock(t)
	repo := NewClubRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT league_id FROM clubs WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"league_id"}).AddRow(int64(7)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT league_id FROM clubs WHERE id = $1")).
		WithArgs(int64(43)).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, league_id, name FROM clubs WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "league_id", "name"}).AddRow(int64(42), int64(7), "Tigers"))

	leagueID, err := repo.LeagueIDForClub(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(7), leagueID)

	_, err = repo.LeagueIDForClub(context.Background(), 43)
	require.ErrorIs(t, err, model.ErrClubNotFound)

	club, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, model.Club{ID: 42, LeagueID: 7, Name: "Tigers"}, club)
}

func TestAuditRepository_LogAndQuery(t *testing.T) {
	mock := newMock(t)
	repo := NewAuditRepository(mock)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO auth_audit_entries")).
		WithArgs("magic_link.redeemed", pgxmock.AnyArg(), "17", "alice@example.com", "10.0.0.1", "success", "", []byte(`{"method":"magic_link"}`), "").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Log(context.Background(), model.AuditEntry{
		Action:     "magic_link.redeemed",
		OccurredAt: at.Format(time.RFC3339Nano),
		Actor:      model.AuditActor{UserID: "17", Email: "alice@example.com", IP: "10.0.0.1"},
		Status:     "success",
		Details:    map[string]string{"method": "magic_link"},
	}))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM auth_audit_entries WHERE lower(action) = lower($1) AND actor_user_id = $2")).
		WithArgs("magic_link.redeemed", "17").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("LIMIT $3 OFFSET $4")).
		WithArgs("magic_link.redeemed", "17", 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"action", "occurred_at", "actor_user_id", "actor_email", "actor_ip", "status", "resource", "details", "error_text"}).
			AddRow("magic_link.redeemed", at, "17", "alice@example.com", "10.0.0.1", "success", "", []byte(`{"method":"magic_link"}`), ""))

	entries, meta, err := repo.Query(context.Background(), model.AuditQuery{
		Action: "magic_link.redeemed", ActorID: "17", Page: 2, Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, model.Meta{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, meta)
	require.Len(t, entries, 1)
	assert.Equal(t, "2024-03-01T12:00:00Z", entries[0].OccurredAt)
	assert.Equal(t, map[string]any{"method": "magic_link"}, entries[0].Details)
}
