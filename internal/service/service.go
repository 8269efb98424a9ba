// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/diego94js-source/event-weaver/internal/model"
	"github.com/diego94js-source/event-weaver/internal/repository"
)

// EventStore is the persistence surface EventService needs.
type EventStore interface {
	Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	UpdateStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error)
}

// AttendeeStore is the persistence surface AttendeeService needs.
type AttendeeStore interface {
	GetByID(ctx context.Context, id string) (*model.Attendee, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Attendee, error)
	UpdateStatus(ctx context.Context, id string, status model.AttendeeStatus) (*model.Attendee, error)
}

// EventService orchestrates host-side event operations.
type EventService struct {
	events EventStore
}

// NewEventService constructs an EventService.
func NewEventService(events EventStore) *EventService {
	return &EventService{events: events}
}

// CreateEvent validates the request and delegates to the repository.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if req.Title == "" {
		return nil, fmt.Errorf("event title is required")
	}
	if req.EventDate.IsZero() {
		return nil, fmt.Errorf("event date is required")
	}
	if req.DepositAmount.IsNegative() {
		return nil, fmt.Errorf("deposit amount cannot be negative")
	}
	return s.events.Create(ctx, req)
}

// ListEvents returns all events.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.List(ctx)
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id is required")
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEventStatus moves an event between active and completed. A completed
// event stops accepting registrations; nothing else about it changes.
func (s *EventService) UpdateEventStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error) {
	if status != model.EventActive && status != model.EventCompleted {
		return nil, fmt.Errorf("invalid event status %q", status)
	}
	event, err := s.events.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update event status: %w", err)
	}
	return event, nil
}

// AttendeeService orchestrates host-side attendee operations: the check-in
// list and the attendance toggle.
type AttendeeService struct {
	events    EventStore
	attendees AttendeeStore
}

// NewAttendeeService constructs an AttendeeService.
func NewAttendeeService(events EventStore, attendees AttendeeStore) *AttendeeService {
	return &AttendeeService{events: events, attendees: attendees}
}

// ListAttendees returns all registrations for an event.
func (s *AttendeeService) ListAttendees(ctx context.Context, eventID string) ([]model.Attendee, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, repository.ErrNotFound
	}
	return s.attendees.ListByEvent(ctx, eventID)
}

// ToggleAttendance flips a registration between registered and checked_in.
// Only the status field changes. A no_show record is final and cannot be
// toggled (model.ErrNoShowFinal).
func (s *AttendeeService) ToggleAttendance(ctx context.Context, attendeeID string) (*model.Attendee, error) {
	att, err := s.attendees.GetByID(ctx, attendeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get attendee: %w", err)
	}

	next, err := att.ToggleTarget()
	if err != nil {
		return nil, err
	}
	updated, err := s.attendees.UpdateStatus(ctx, attendeeID, next)
	if err != nil {
		return nil, fmt.Errorf("toggle attendance: %w", err)
	}
	return updated, nil
}
