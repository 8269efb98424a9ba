// Package registration implements the deposit-backed registration workflow:
// duplicate-check gate → authorization-intent creation → user-paced
// confirmation → registration commit. A registration is durably recorded
// only after the deposit authorization reaches a funds-held state.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/diego94js-source/event-weaver/internal/model"
	"github.com/diego94js-source/event-weaver/internal/payment"
	"github.com/diego94js-source/event-weaver/internal/repository"
)

// Domain errors surfaced by the workflow, in addition to
// repository.ErrNotFound and repository.ErrAlreadyRegistered which pass
// through unchanged. Handlers map these to HTTP statuses; none is retried
// automatically — the guest decides whether to start the chain over.
var (
	// ErrEventClosed means the event is completed and no longer accepts
	// registrations.
	ErrEventClosed = errors.New("event is no longer accepting registrations")
	// ErrNoDeposit means the event has no positive deposit amount, so there
	// is nothing meaningful to authorize.
	ErrNoDeposit = errors.New("event has no deposit to authorize")
	// ErrValidation covers missing or malformed guest input. Nothing is
	// sent to the processor on a validation failure.
	ErrValidation = errors.New("invalid registration input")
	// ErrAuthorizationFailed is the "could not start payment" class:
	// processor-side failure during intent creation. No partial state is
	// persisted.
	ErrAuthorizationFailed = errors.New("could not start payment")
	// ErrNotConfirmed means the authorization never reached a funds-held
	// state; no attendee is written and the guest may retry from the start.
	ErrNotConfirmed = errors.New("deposit authorization was not confirmed")
)

// OrphanedAuthorizationError is the most dangerous failure class: the
// deposit hold succeeded but the registration write did not, leaving funds
// held with no matching attendee. It carries everything an out-of-band
// reconciliation job needs to find and release the hold. The hold is not
// released automatically on this path.
type OrphanedAuthorizationError struct {
	AuthorizationID string
	EventID         string
	Email           string
	At              time.Time
	Err             error
}

func (e *OrphanedAuthorizationError) Error() string {
	return fmt.Sprintf("registration commit failed with authorization %s held (event %s, email %s): %v",
		e.AuthorizationID, e.EventID, e.Email, e.Err)
}

func (e *OrphanedAuthorizationError) Unwrap() error { return e.Err }

// Phase is the position of a registration attempt in the workflow.
type Phase string

const (
	// PhaseAwaitingConfirmation means an authorization intent exists and
	// the workflow is suspended on the guest confirming it. This wait is
	// user-paced and unbounded; the processor may expire the intent on its
	// own schedule.
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	// PhaseCommitted means the attendee record is durably written.
	PhaseCommitted Phase = "committed"
	// PhaseFailed is terminal for the attempt; retrying starts a fresh
	// chain with a fresh authorization.
	PhaseFailed Phase = "failed"
)

// Attempt is the explicit state of one registration attempt. It must
// survive the indefinite confirmation wait, so the caller (session scope,
// client state) holds it between Start and Complete rather than the
// workflow keeping ambient state.
type Attempt struct {
	EventID         string
	UserName        string
	Email           string
	AuthorizationID string
	ClientSecret    string
	Phase           Phase
}

// EventStore is the read-only view of events the workflow needs. A missing
// event is reported as repository.ErrNotFound.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// AttendeeStore is the registration store. Create must reject a second
// registration for the same (event, normalized email) pair with
// repository.ErrAlreadyRegistered; the pre-check via ExistsByEventEmail is
// only an optimization.
type AttendeeStore interface {
	ExistsByEventEmail(ctx context.Context, eventID, email string) (bool, error)
	Create(ctx context.Context, eventID, userName, email, authorizationID string) (*model.Attendee, error)
}

// Workflow orchestrates registration attempts. It holds no per-attempt
// state; each step takes and returns an Attempt.
type Workflow struct {
	events    EventStore
	attendees AttendeeStore
	payments  payment.Authorizer
	currency  string
}

// NewWorkflow constructs a Workflow with its collaborators.
func NewWorkflow(events EventStore, attendees AttendeeStore, payments payment.Authorizer, currency string) *Workflow {
	return &Workflow{
		events:    events,
		attendees: attendees,
		payments:  payments,
		currency:  currency,
	}
}

// Start runs the first half of the chain: validate input, duplicate-check
// gate, event lookup, authorization-intent creation. On success the returned
// attempt is awaiting the guest's confirmation and carries the client secret
// for the payment surface.
//
// Two concurrent Starts for the same (event, email) can both pass the gate
// and create two independent authorizations; intent creation is not
// deduplicated. Only one of them can later commit — the unique constraint
// settles the race at Complete — and the loser's authorization is abandoned
// for out-of-band reconciliation.
func (w *Workflow) Start(ctx context.Context, eventID, userName, email string) (*Attempt, error) {
	userName = strings.TrimSpace(userName)
	normalized := model.NormalizeEmail(email)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", ErrValidation)
	}
	if userName == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !isValidEmail(normalized) {
		return nil, fmt.Errorf("%w: a valid email is required", ErrValidation)
	}

	// Fast-path duplicate gate. No intent is created for a known duplicate,
	// but this check cannot hold a lock across the confirmation wait; the
	// store's unique constraint is the real guard.
	exists, err := w.attendees.ExistsByEventEmail(ctx, eventID, normalized)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if exists {
		return nil, repository.ErrAlreadyRegistered
	}

	event, err := w.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}
	if event.Status != model.EventActive {
		return nil, ErrEventClosed
	}

	amount := payment.MinorUnits(event.DepositAmount)
	if amount <= 0 {
		return nil, ErrNoDeposit
	}

	auth, err := w.payments.CreateAuthorization(ctx, payment.AuthorizationRequest{
		Amount:     amount,
		Currency:   w.currency,
		EventID:    event.ID,
		EventTitle: event.Title,
		Email:      normalized,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorizationFailed, err)
	}

	return &Attempt{
		EventID:         event.ID,
		UserName:        userName,
		Email:           normalized,
		AuthorizationID: auth.ID,
		ClientSecret:    auth.ClientSecret,
		Phase:           PhaseAwaitingConfirmation,
	}, nil
}

// Complete runs the second half of the chain after the guest confirmed the
// authorization on the payment surface. It re-fetches the authorization and
// commits the attendee only if funds are actually held; no commit path
// bypasses that check.
func (w *Workflow) Complete(ctx context.Context, attempt *Attempt) (*model.Attendee, error) {
	if attempt == nil || attempt.AuthorizationID == "" {
		return nil, fmt.Errorf("%w: missing authorization reference", ErrValidation)
	}
	if attempt.Phase != PhaseAwaitingConfirmation {
		return nil, fmt.Errorf("%w: attempt is not awaiting confirmation", ErrValidation)
	}

	auth, err := w.payments.GetAuthorization(ctx, attempt.AuthorizationID)
	if err != nil {
		attempt.Phase = PhaseFailed
		return nil, fmt.Errorf("%w: %v", ErrNotConfirmed, err)
	}
	if !auth.Held() {
		attempt.Phase = PhaseFailed
		return nil, fmt.Errorf("%w: authorization status is %s", ErrNotConfirmed, auth.Status)
	}

	att, err := w.attendees.Create(ctx, attempt.EventID, attempt.UserName, attempt.Email, attempt.AuthorizationID)
	if err != nil {
		attempt.Phase = PhaseFailed
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			// The race loser. Expected, non-fatal: the guest is registered,
			// just not by this attempt. This authorization is abandoned.
			return nil, repository.ErrAlreadyRegistered
		}
		orphan := &OrphanedAuthorizationError{
			AuthorizationID: attempt.AuthorizationID,
			EventID:         attempt.EventID,
			Email:           attempt.Email,
			At:              time.Now().UTC(),
			Err:             err,
		}
		// Funds are held with no registration recorded. Log with a marker
		// the reconciliation job can grep for; releasing the hold is its
		// job, not ours.
		log.Printf("ORPHANED AUTHORIZATION auth=%s event=%s email=%s: %v",
			orphan.AuthorizationID, orphan.EventID, orphan.Email, err)
		return nil, orphan
	}

	attempt.Phase = PhaseCommitted
	return att, nil
}

// isValidEmail does a basic structural check (no external deps).
func isValidEmail(email string) bool {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	return len(parts[0]) > 0 && strings.Contains(parts[1], ".")
}
