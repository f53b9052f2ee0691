package model

import (
	"strconv"
	"time"
)

type User struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"name"`
	SystemRole  SystemRole `json:"system_role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SubjectID is the string-encoded id used as the token subject.
func (u User) SubjectID() string {
	return strconv.FormatInt(u.ID, 10)
}

type AuthUser struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	SystemRole SystemRole `json:"system_role"`
}

func (u User) AuthUser() AuthUser {
	role := u.SystemRole
	if role == "" {
		role = SystemRoleUser
	}
	return AuthUser{ID: u.SubjectID(), Email: u.Email, Name: u.DisplayName, SystemRole: role}
}

// MagicLink is a persisted single-use login token.
type MagicLink struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Email     string     `json:"email"`
	Token     string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (m MagicLink) IsUsed() bool {
	return m.UsedAt != nil
}

func (m MagicLink) IsExpiredAt(now time.Time) bool {
	return m.ExpiresAt.Before(now)
}

// LoginResult is returned after a successful magic-link redemption.
type LoginResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type League struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Club struct {
	ID       int64  `json:"id"`
	LeagueID int64  `json:"league_id"`
	Name     string `json:"name"`
}

// LeagueGrantRow and ClubGrantRow are the raw grant rows read from storage.
type LeagueGrantRow struct {
	Role       Role
	LeagueID   int64
	LeagueName string
}

type ClubGrantRow struct {
	Role     Role
	ClubID   int64
	ClubName string
	LeagueID int64
}
