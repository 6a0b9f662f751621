package audit

import "time"

// Kind names the audited action.
const (
	KindSignupStarted   = "signup.started"
	KindSignupVerified  = "signup.verified"
	KindLogin           = "auth.login"
	KindLogout          = "auth.logout"
	KindPasswordChanged = "auth.password_changed"
	KindReviewCreated   = "review.created"
	KindReviewEdited    = "review.edited"
	KindReviewDeleted   = "review.deleted"
	KindReviewVoted     = "review.voted"
	KindProfileUpdated  = "profile.updated"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Kind      string            `json:"kind"`
	ActorID   string            `json:"actor_id,omitempty"`
	TargetID  string            `json:"target_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}
