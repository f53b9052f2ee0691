package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// MagicLinkResponse is the flat body of the magic-link exchange endpoints.
type MagicLinkResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token,omitempty"`
	User    *AuthUser `json:"user,omitempty"`
}

type SessionInfo struct {
	User          AuthUser    `json:"user"`
	Roles         []RoleGrant `json:"roles"`
	ActiveContext *RoleGrant  `json:"active_context,omitempty"`
	ExpiresAt     int64       `json:"expires_at"`
}

type ContextTokenResponse struct {
	Token   string     `json:"token"`
	Context OrgContext `json:"context"`
}

type AuditActor struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	IP     string `json:"ip,omitempty"`
}

type AuditEntry struct {
	Action     string     `json:"action"`
	OccurredAt string     `json:"occurred_at"`
	Actor      AuditActor `json:"actor"`
	Status     string     `json:"status"`
	Resource   string     `json:"resource,omitempty"`
	Details    any        `json:"details,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type AuditListData struct {
	Items []AuditEntry `json:"items"`
}

type LeagueListData struct {
	Items []League `json:"items"`
}
