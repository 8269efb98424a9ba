// Package model defines the core domain types for the deposit-backed
// event registration system.
package model

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
)

// AttendeeStatus is the attendance state of a registration.
type AttendeeStatus string

const (
	// StatusRegistered means the deposit hold is in place and the guest
	// has a confirmed spot.
	StatusRegistered AttendeeStatus = "registered"
	// StatusCheckedIn means the host marked the guest as present.
	StatusCheckedIn AttendeeStatus = "checked_in"
	// StatusNoShow is written only by the out-of-band capture process,
	// never by this service.
	StatusNoShow AttendeeStatus = "no_show"
)

// ErrNoShowFinal is returned when a host tries to toggle attendance on a
// registration already marked no_show. Once the capture process has flagged
// a no-show the record is final from the host's point of view.
var ErrNoShowFinal = errors.New("attendance is final for a no-show registration")

// ValidAttendeeStatus reports whether s is one of the known attendance states.
func ValidAttendeeStatus(s AttendeeStatus) bool {
	switch s {
	case StatusRegistered, StatusCheckedIn, StatusNoShow:
		return true
	}
	return false
}

// Event represents an event created by a host, registrable via a public link.
// Immutable after creation except for Status.
type Event struct {
	ID            string          `json:"id"`
	HostID        string          `json:"host_id"`
	Title         string          `json:"title"`
	EventDate     time.Time       `json:"event_date"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Location      string          `json:"location,omitempty"`
	Status        EventStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Attendee represents a guest registration backed by a deposit hold.
// The authorization id correlates the record with the payment processor's
// manual-capture authorization so an external job can capture or release it.
type Attendee struct {
	ID              string         `json:"id"`
	EventID         string         `json:"event_id"`
	UserName        string         `json:"user_name"`
	UserEmail       string         `json:"user_email"`
	Status          AttendeeStatus `json:"status"`
	AuthorizationID string         `json:"authorization_id"`
	CreatedAt       time.Time      `json:"created_at"`
}

// ToggleTarget returns the status a host-side attendance toggle moves this
// registration to. The toggle is a strict two-state flip between registered
// and checked_in; a no_show record cannot be toggled.
func (a *Attendee) ToggleTarget() (AttendeeStatus, error) {
	switch a.Status {
	case StatusRegistered:
		return StatusCheckedIn, nil
	case StatusCheckedIn:
		return StatusRegistered, nil
	case StatusNoShow:
		return "", ErrNoShowFinal
	default:
		return "", errors.New("unknown attendance status: " + string(a.Status))
	}
}

// NormalizeEmail lowercases and trims an email address. Every duplicate
// check and every write must see the same normalized form; comparing an
// un-normalized email against a normalized store is a consistency bug.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	HostID        string          `json:"host_id"`
	Title         string          `json:"title"`
	EventDate     time.Time       `json:"event_date"`
	DepositAmount decimal.Decimal `json:"deposit_amount"`
	Location      string          `json:"location"`
}

// UpdateEventStatusRequest is the payload for completing an event.
type UpdateEventStatusRequest struct {
	Status EventStatus `json:"status"`
}

// RegisterRequest is the payload for starting a registration attempt.
type RegisterRequest struct {
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// CompleteRegistrationRequest finishes a registration after the client
// confirmed the deposit authorization with the payment processor.
type CompleteRegistrationRequest struct {
	UserName        string `json:"user_name"`
	UserEmail       string `json:"user_email"`
	AuthorizationID string `json:"authorization_id"`
}

// RegistrationStartedResponse hands the client what it needs to collect the
// deposit authorization: the processor's client secret and the authorization
// id to send back on completion.
type RegistrationStartedResponse struct {
	ClientSecret    string `json:"client_secret"`
	AuthorizationID string `json:"authorization_id"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
