// Package repository implements all database queries for the registration
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diego94js-source/event-weaver/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyRegistered is returned when the same email registers twice for
// an event. The unique index on attendees(event_id, user_email) raises it on
// commit even when two attempts race past the duplicate pre-check.
var ErrAlreadyRegistered = errors.New("email already registered for this event")

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event and returns it with a generated UUID.
func (r *EventRepository) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event := &model.Event{
		ID:            uuid.New().String(),
		HostID:        req.HostID,
		Title:         req.Title,
		EventDate:     req.EventDate,
		DepositAmount: req.DepositAmount,
		Location:      req.Location,
		Status:        model.EventActive,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, host_id, title, event_date, deposit_amount, location, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.HostID, event.Title, event.EventDate,
		event.DepositAmount.StringFixed(2), event.Location, event.Status, event.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return event, nil
}

// List returns all events ordered by creation time descending.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, host_id, title, event_date, deposit_amount::text, COALESCE(location, ''), status, created_at
		 FROM events
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, host_id, title, event_date, deposit_amount::text, COALESCE(location, ''), status, created_at
		 FROM events WHERE id = $1`,
		id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// UpdateStatus changes an event's lifecycle status. Everything else on an
// event is immutable after creation.
func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE events SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update event status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e      model.Event
		amount string
	)
	if err := row.Scan(&e.ID, &e.HostID, &e.Title, &e.EventDate, &amount, &e.Location, &e.Status, &e.CreatedAt); err != nil {
		return nil, err
	}
	if err := e.DepositAmount.Scan(amount); err != nil {
		return nil, fmt.Errorf("parse deposit amount: %w", err)
	}
	return &e, nil
}

// AttendeeRepository handles persistence for attendee registrations.
type AttendeeRepository struct {
	db *pgxpool.Pool
}

// NewAttendeeRepository constructs an AttendeeRepository.
func NewAttendeeRepository(db *pgxpool.Pool) *AttendeeRepository {
	return &AttendeeRepository{db: db}
}

// ExistsByEventEmail reports whether a registration already exists for the
// (event, normalized email) pair. Callers must normalize the email first;
// the store holds only normalized addresses.
func (r *AttendeeRepository) ExistsByEventEmail(ctx context.Context, eventID, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendees WHERE event_id = $1 AND user_email = $2)`,
		eventID, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	return exists, nil
}

// Create inserts a new attendee with status registered and the deposit
// authorization attached. A unique-index violation on (event_id, user_email)
// comes back as ErrAlreadyRegistered so callers can treat the race-loser as
// an ordinary duplicate rather than a storage failure.
func (r *AttendeeRepository) Create(ctx context.Context, eventID, userName, email, authorizationID string) (*model.Attendee, error) {
	att := &model.Attendee{
		ID:              uuid.New().String(),
		EventID:         eventID,
		UserName:        userName,
		UserEmail:       email,
		Status:          model.StatusRegistered,
		AuthorizationID: authorizationID,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO attendees (id, event_id, user_name, user_email, status, authorization_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		att.ID, att.EventID, att.UserName, att.UserEmail, att.Status, att.AuthorizationID, att.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("insert attendee: %w", err)
	}
	return att, nil
}

// GetByID returns a single attendee or ErrNotFound.
func (r *AttendeeRepository) GetByID(ctx context.Context, id string) (*model.Attendee, error) {
	var a model.Attendee
	err := r.db.QueryRow(ctx,
		`SELECT id, event_id, user_name, user_email, status, authorization_id, created_at
		 FROM attendees WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.EventID, &a.UserName, &a.UserEmail, &a.Status, &a.AuthorizationID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}
	return &a, nil
}

// ListByEvent returns all attendees for a given event, oldest first.
func (r *AttendeeRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Attendee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, event_id, user_name, user_email, status, authorization_id, created_at
		 FROM attendees
		 WHERE event_id = $1
		 ORDER BY created_at ASC`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	var atts []model.Attendee
	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(&a.ID, &a.EventID, &a.UserName, &a.UserEmail, &a.Status, &a.AuthorizationID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

// UpdateStatus writes a new attendance status. The full status set is
// accepted here (not just the toggle pair) so the out-of-band capture
// process can mark no-shows through the same store.
func (r *AttendeeRepository) UpdateStatus(ctx context.Context, id string, status model.AttendeeStatus) (*model.Attendee, error) {
	if !model.ValidAttendeeStatus(status) {
		return nil, fmt.Errorf("invalid attendee status %q", status)
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE attendees SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update attendee status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}
