package model

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type MagicLinkRequest struct {
	Email string `json:"email"`
}

func (r MagicLinkRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
	)
}

type MagicLinkVerifyRequest struct {
	Token string `json:"token"`
}

func (r MagicLinkVerifyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required, validation.Length(64, 64), is.Hexadecimal),
	)
}

// SwitchContextRequest selects the active organizational scope. Both fields
// empty means "use the default".
type SwitchContextRequest struct {
	ScopeID   *int64    `json:"scope_id"`
	ScopeType ScopeType `json:"scope_type"`
}

func (r SwitchContextRequest) Validate() error {
	if r.ScopeID == nil && r.ScopeType == "" {
		return nil
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.ScopeID, validation.Required),
		validation.Field(&r.ScopeType, validation.Required, validation.In(ScopeLeague, ScopeClub)),
	)
}

// Scope returns the requested scope, or nil when none was given.
func (r SwitchContextRequest) Scope() *ScopeRef {
	if r.ScopeID == nil {
		return nil
	}
	return &ScopeRef{ID: *r.ScopeID, Type: ScopeType(strings.ToLower(string(r.ScopeType)))}
}

const MaxAuditPageSize = 200

type AuditQuery struct {
	Action  string
	ActorID string
	Status  string
	From    string
	To      string
	Page    int
	Limit   int
}

func (q AuditQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Status, validation.In("success", "ignored", "failed")),
		validation.Field(&q.Page, validation.Min(1)),
		validation.Field(&q.Limit, validation.Min(1), validation.Max(MaxAuditPageSize)),
	)
}
