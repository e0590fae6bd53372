package domain

import "time"

// AuthEventKind labels an entry of the authentication audit trail.
type AuthEventKind string

const (
	EventLoginSucceeded         AuthEventKind = "login_succeeded"
	EventLoginFailed            AuthEventKind = "login_failed"
	EventPasswordChanged        AuthEventKind = "password_changed"
	EventPasswordChangeRejected AuthEventKind = "password_change_rejected"
	EventUserRegistered         AuthEventKind = "user_registered"
)

// AuthEvent records a single authentication-relevant action. Reason is only
// set for failures and never contains secrets.
type AuthEvent struct {
	ID         string        `json:"id" bson:"_id"`
	Username   string        `json:"username" bson:"username"`
	Kind       AuthEventKind `json:"kind" bson:"kind"`
	Reason     string        `json:"reason,omitempty" bson:"reason,omitempty"`
	OccurredAt time.Time     `json:"occurred_at" bson:"occurred_at"`
}
