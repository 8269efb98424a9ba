package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diego94js-source/event-weaver/internal/model"
	"github.com/diego94js-source/event-weaver/internal/repository"
)

type fakeEventStore struct {
	events map[string]*model.Event
}

func (s *fakeEventStore) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	e := &model.Event{
		ID:            "ev1",
		HostID:        req.HostID,
		Title:         req.Title,
		EventDate:     req.EventDate,
		DepositAmount: req.DepositAmount,
		Location:      req.Location,
		Status:        model.EventActive,
		CreatedAt:     time.Now().UTC(),
	}
	s.events[e.ID] = e
	return e, nil
}

func (s *fakeEventStore) List(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.events {
		out = append(out, *e)
	}
	return out, nil
}

func (s *fakeEventStore) GetByID(ctx context.Context, id string) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

func (s *fakeEventStore) UpdateStatus(ctx context.Context, id string, status model.EventStatus) (*model.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	e.Status = status
	return e, nil
}

type fakeAttendeeStore struct {
	attendees map[string]*model.Attendee
}

func (s *fakeAttendeeStore) GetByID(ctx context.Context, id string) (*model.Attendee, error) {
	a, ok := s.attendees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *fakeAttendeeStore) ListByEvent(ctx context.Context, eventID string) ([]model.Attendee, error) {
	var out []model.Attendee
	for _, a := range s.attendees {
		if a.EventID == eventID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *fakeAttendeeStore) UpdateStatus(ctx context.Context, id string, status model.AttendeeStatus) (*model.Attendee, error) {
	a, ok := s.attendees[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a.Status = status
	cp := *a
	return &cp, nil
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewEventService(&fakeEventStore{events: map[string]*model.Event{}})

	cases := []struct {
		name string
		req  model.CreateEventRequest
	}{
		{"missing title", model.CreateEventRequest{EventDate: time.Now()}},
		{"blank title", model.CreateEventRequest{Title: "   ", EventDate: time.Now()}},
		{"missing date", model.CreateEventRequest{Title: "Dinner"}},
		{"negative deposit", model.CreateEventRequest{
			Title:         "Dinner",
			EventDate:     time.Now(),
			DepositAmount: decimal.RequireFromString("-1.00"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CreateEvent(ctx, tc.req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	ev, err := svc.CreateEvent(ctx, model.CreateEventRequest{
		Title:         "  Dinner  ",
		EventDate:     time.Now().Add(24 * time.Hour),
		DepositAmount: decimal.RequireFromString("25.00"),
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.Title != "Dinner" {
		t.Fatalf("title not trimmed: %q", ev.Title)
	}
	if ev.Status != model.EventActive {
		t.Fatalf("new event status = %s, want active", ev.Status)
	}
}

func TestUpdateEventStatus(t *testing.T) {
	ctx := context.Background()
	store := &fakeEventStore{events: map[string]*model.Event{
		"ev1": {ID: "ev1", Title: "Dinner", Status: model.EventActive},
	}}
	svc := NewEventService(store)

	ev, err := svc.UpdateEventStatus(ctx, "ev1", model.EventCompleted)
	if err != nil {
		t.Fatalf("UpdateEventStatus: %v", err)
	}
	if ev.Status != model.EventCompleted {
		t.Fatalf("status = %s, want completed", ev.Status)
	}

	if _, err := svc.UpdateEventStatus(ctx, "ev1", "archived"); err == nil {
		t.Fatal("invalid status accepted")
	}
	if _, err := svc.UpdateEventStatus(ctx, "nope", model.EventCompleted); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// The toggle round-trip: registered → checked_in → registered, with every
// other field untouched.
func TestToggleAttendanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	original := &model.Attendee{
		ID:              "att1",
		EventID:         "ev1",
		UserName:        "Ana",
		UserEmail:       "a@x.com",
		Status:          model.StatusRegistered,
		AuthorizationID: "auth_1",
		CreatedAt:       time.Now().UTC(),
	}
	store := &fakeAttendeeStore{attendees: map[string]*model.Attendee{"att1": original}}
	svc := NewAttendeeService(&fakeEventStore{events: map[string]*model.Event{}}, store)

	att, err := svc.ToggleAttendance(ctx, "att1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if att.Status != model.StatusCheckedIn {
		t.Fatalf("status = %s, want checked_in", att.Status)
	}

	att, err = svc.ToggleAttendance(ctx, "att1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if att.Status != model.StatusRegistered {
		t.Fatalf("status = %s, want registered", att.Status)
	}

	if att.ID != original.ID || att.EventID != original.EventID ||
		att.UserName != original.UserName || att.UserEmail != original.UserEmail ||
		att.AuthorizationID != original.AuthorizationID ||
		!att.CreatedAt.Equal(original.CreatedAt) {
		t.Fatalf("toggle mutated fields other than status: %+v", att)
	}
}

func TestToggleAttendanceNoShow(t *testing.T) {
	ctx := context.Background()
	store := &fakeAttendeeStore{attendees: map[string]*model.Attendee{
		"att1": {ID: "att1", EventID: "ev1", Status: model.StatusNoShow},
	}}
	svc := NewAttendeeService(&fakeEventStore{events: map[string]*model.Event{}}, store)

	if _, err := svc.ToggleAttendance(ctx, "att1"); !errors.Is(err, model.ErrNoShowFinal) {
		t.Fatalf("err = %v, want ErrNoShowFinal", err)
	}

	// The record must be untouched.
	att, _ := store.GetByID(ctx, "att1")
	if att.Status != model.StatusNoShow {
		t.Fatalf("status changed to %s", att.Status)
	}
}

func TestListAttendeesUnknownEvent(t *testing.T) {
	ctx := context.Background()
	svc := NewAttendeeService(
		&fakeEventStore{events: map[string]*model.Event{}},
		&fakeAttendeeStore{attendees: map[string]*model.Attendee{}},
	)
	if _, err := svc.ListAttendees(ctx, "nope"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
