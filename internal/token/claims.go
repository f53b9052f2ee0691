package token

import (
	"encoding/json"

	"league-platform/internal/model"
)

// Claims is the signed payload. Extra holds caller-supplied claims (for
// example league_id and role on invitation acceptance); they are merged into
// the top-level JSON object and cannot shadow the claims below.
type Claims struct {
	UserID        string            `json:"user_id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	IssuedAt      int64             `json:"iat"`
	ExpiresAt     int64             `json:"exp"`
	NotBefore     int64             `json:"nbf"`
	Issuer        string            `json:"iss"`
	SystemRole    model.SystemRole  `json:"system_role,omitempty"`
	OrgID         *int64            `json:"org_id,omitempty"`
	OrgType       *model.ScopeType  `json:"org_type,omitempty"`
	OrgName       *string           `json:"org_name,omitempty"`
	Roles         []model.RoleGrant `json:"roles,omitempty"`
	ActiveContext *model.RoleGrant  `json:"active_context,omitempty"`
	Extra         map[string]any    `json:"-"`
}

var reservedClaims = map[string]struct{}{
	"user_id":        {},
	"email":          {},
	"name":           {},
	"iat":            {},
	"exp":            {},
	"nbf":            {},
	"iss":            {},
	"system_role":    {},
	"org_id":         {},
	"org_type":       {},
	"org_name":       {},
	"roles":          {},
	"active_context": {},
}

// WithOrgContext returns a copy of c carrying the organizational claims.
func (c Claims) WithOrgContext(org model.OrgContext) Claims {
	c.SystemRole = org.SystemRole
	c.OrgID = org.OrgID
	c.OrgType = org.OrgType
	c.OrgName = org.OrgName
	c.Roles = org.Roles
	c.ActiveContext = org.ActiveContext
	return c
}

func (c Claims) MarshalJSON() ([]byte, error) {
	type plain Claims
	base, err := json.Marshal(plain(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}

	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for key, value := range c.Extra {
		if _, reserved := reservedClaims[key]; reserved {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

func (c *Claims) UnmarshalJSON(data []byte) error {
	type plain Claims
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for key, raw := range all {
		if _, reserved := reservedClaims[key]; reserved {
			continue
		}
		var value any
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		if decoded.Extra == nil {
			decoded.Extra = map[string]any{}
		}
		decoded.Extra[key] = value
	}

	*c = Claims(decoded)
	return nil
}
