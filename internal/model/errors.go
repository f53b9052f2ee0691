package model

import "errors"

var (
	// User related errors
	ErrUserNotFound = errors.New("user not found")

	// Magic link related errors
	ErrMagicLinkNotFound  = errors.New("magic link not found")
	ErrMagicLinkCollision = errors.New("magic link token collision")

	// Organization related errors
	ErrLeagueNotFound = errors.New("league not found")
	ErrClubNotFound   = errors.New("club not found")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
