// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service and workflow layers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diego94js-source/event-weaver/internal/model"
	"github.com/diego94js-source/event-weaver/internal/registration"
	"github.com/diego94js-source/event-weaver/internal/repository"
	"github.com/diego94js-source/event-weaver/internal/service"
)

// API holds all HTTP handlers for the registration service.
type API struct {
	events         *service.EventService
	attendees      *service.AttendeeService
	workflow       *registration.Workflow
	publishableKey string
}

// NewAPI constructs the handler set.
func NewAPI(events *service.EventService, attendees *service.AttendeeService, workflow *registration.Workflow, publishableKey string) *API {
	return &API{
		events:         events,
		attendees:      attendees,
		workflow:       workflow,
		publishableKey: publishableKey,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ─── Event handlers ───────────────────────────────────────────────────────────

// CreateEvent handles POST /events
// Creates a new event with a title, date, deposit amount, and optional location.
func (h *API) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
func (h *API) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *API) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	event, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// UpdateEventStatus handles PATCH /events/{id}/status
// Moves an event between active and completed.
func (h *API) UpdateEventStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.UpdateEventStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.UpdateEventStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// ─── Registration handlers ────────────────────────────────────────────────────

// StartRegistration handles POST /events/{id}/register
// Runs the duplicate-check gate and opens a manual-capture deposit
// authorization. The response carries the client secret the guest's payment
// surface needs; no attendee is recorded yet.
func (h *API) StartRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	attempt, err := h.workflow.Start(r.Context(), id, req.UserName, req.UserEmail)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrAlreadyRegistered):
			writeError(w, http.StatusConflict, "you are already registered for this event")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "event not found")
		case errors.Is(err, registration.ErrEventClosed),
			errors.Is(err, registration.ErrNoDeposit):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, registration.ErrAuthorizationFailed):
			writeError(w, http.StatusBadGateway, "could not start payment")
		default:
			writeError(w, http.StatusInternalServerError, "failed to start registration")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, model.RegistrationStartedResponse{
		ClientSecret:    attempt.ClientSecret,
		AuthorizationID: attempt.AuthorizationID,
	})
}

// CompleteRegistration handles POST /events/{id}/register/complete
// Called after the guest confirmed the authorization on the payment surface.
// Verifies the funds are held, then commits the attendee record.
func (h *API) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req model.CompleteRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	attempt := &registration.Attempt{
		EventID:         id,
		UserName:        req.UserName,
		Email:           model.NormalizeEmail(req.UserEmail),
		AuthorizationID: req.AuthorizationID,
		Phase:           registration.PhaseAwaitingConfirmation,
	}

	att, err := h.workflow.Complete(r.Context(), attempt)
	if err != nil {
		var orphan *registration.OrphanedAuthorizationError
		switch {
		case errors.Is(err, registration.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrAlreadyRegistered):
			writeError(w, http.StatusConflict, "you are already registered for this event")
		case errors.Is(err, registration.ErrNotConfirmed):
			writeError(w, http.StatusPaymentRequired, "deposit authorization was not confirmed")
		case errors.As(err, &orphan):
			// Funds held, registration not recorded. The workflow already
			// logged the reconciliation data; the guest gets a generic
			// failure.
			writeError(w, http.StatusInternalServerError, "registration failed, please contact the host")
		default:
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, att)
}

// ─── Attendee handlers ────────────────────────────────────────────────────────

// ListAttendees handles GET /events/{id}/attendees
func (h *API) ListAttendees(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	atts, err := h.attendees.ListAttendees(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to list attendees")
		return
	}

	if atts == nil {
		atts = []model.Attendee{}
	}

	writeJSON(w, http.StatusOK, atts)
}

// ToggleAttendance handles POST /attendees/{id}/checkin
// Flips a registration between registered and checked_in.
func (h *API) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	att, err := h.attendees.ToggleAttendance(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "attendee not found")
		case errors.Is(err, model.ErrNoShowFinal):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to update attendance")
		}
		return
	}

	writeJSON(w, http.StatusOK, att)
}

// ─── Misc ─────────────────────────────────────────────────────────────────────

// StripeKey handles GET /config/stripe-key
// Serves the publishable key so a client payment surface can initialize.
func (h *API) StripeKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publishable_key": h.publishableKey})
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
