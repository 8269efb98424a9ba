// Package payment abstracts the manual-capture deposit authorization
// handshake with a payment processor.
package payment

import "context"

// Status is the lifecycle state of a deposit authorization as reported by
// the processor.
type Status string

const (
	// StatusPending means the client has not confirmed the authorization yet.
	StatusPending Status = "pending"
	// StatusRequiresCapture means the confirmation succeeded and funds are
	// held, awaiting a later capture or release.
	StatusRequiresCapture Status = "requires_capture"
	// StatusSucceeded means the authorization completed and settled
	// immediately (processors may skip the held state for some methods).
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the authorization was declined or cancelled.
	StatusFailed Status = "failed"
)

// Authorization is a manual-capture payment hold. It is ephemeral state
// owned by the processor; this system persists only the ID, on the attendee
// record, once a registration commits.
type Authorization struct {
	ID           string
	ClientSecret string
	Status       Status
}

// Held reports whether the authorization reached a funds-held state. Only a
// held authorization may gate a registration commit.
func (a *Authorization) Held() bool {
	return a.Status == StatusRequiresCapture || a.Status == StatusSucceeded
}

// AuthorizationRequest describes the hold to create. Amount is in the
// currency's minor units. EventID, EventTitle and Email are attached as
// processor-side metadata so an out-of-band reconciliation job can match
// abandoned authorizations back to registration attempts.
type AuthorizationRequest struct {
	Amount     int64
	Currency   string
	EventID    string
	EventTitle string
	Email      string
}

// Authorizer is the boundary to the payment processor.
type Authorizer interface {
	// CreateAuthorization opens a manual-capture hold and returns the
	// client secret the guest's device uses to confirm it.
	CreateAuthorization(ctx context.Context, req AuthorizationRequest) (*Authorization, error)

	// GetAuthorization fetches the current state of an authorization,
	// used after the user-paced confirmation to verify funds are held.
	GetAuthorization(ctx context.Context, id string) (*Authorization, error)
}
