package model

import "time"

const (
	AuthActionLogin         = "login"
	AuthActionRegister      = "register"
	AuthActionPasswordReset = "password_reset"
	AuthActionUnlock        = "unlock"
	AuthActionStatus        = "status_change"

	AuthStatusSuccess = "success"
	AuthStatusFailure = "failure"
)

// AuthEvent is one row of the authentication audit trail. Reason carries the
// internal failure cause and is never sent to clients.
type AuthEvent struct {
	Action     string    `json:"action"`
	Status     string    `json:"status"`
	UserID     *int64    `json:"user_id,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	ClientIP   string    `json:"client_ip,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
