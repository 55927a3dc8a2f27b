package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/personvault/personvault/internal/handler/dto"
	"github.com/personvault/personvault/internal/identity"
	"github.com/personvault/personvault/internal/model"
	"github.com/personvault/personvault/internal/service"
)

// PersonHandler handles HTTP requests for person record operations.
type PersonHandler struct {
	svc    *service.PersonService
	logger *slog.Logger
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(svc *service.PersonService, logger *slog.Logger) *PersonHandler {
	return &PersonHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /users.
func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	person, ok := h.decodePerson(w, r)
	if !ok {
		return
	}

	created, err := h.svc.CreatePerson(r.Context(), person)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("person_created",
		"identity_number", created.IdentityNumber,
	)

	writeJSON(w, http.StatusCreated, dto.ToPersonResponse(created))
}

// Get handles GET /users/{identityNumber}.
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "identityNumber")

	person, err := h.svc.GetPerson(r.Context(), number)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPersonResponse(person))
}

// List handles GET /users.
// The listing is a full scan capped at a fixed maximum; order is not
// guaranteed.
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.svc.ListPeople(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToPersonListResponse(people))
}

// Update handles PUT /users/{identityNumber}.
// The path key must match the body's key; a mismatch is a client
// error distinct from not-found.
func (h *PersonHandler) Update(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "identityNumber")

	person, ok := h.decodePerson(w, r)
	if !ok {
		return
	}

	updated, err := h.svc.UpdatePerson(r.Context(), number, person)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("person_updated",
		"identity_number", updated.IdentityNumber,
	)

	writeJSON(w, http.StatusOK, dto.ToPersonResponse(updated))
}

// Delete handles DELETE /users/{identityNumber}.
// The deleted record is returned.
func (h *PersonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "identityNumber")

	deleted, err := h.svc.DeletePerson(r.Context(), number)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("person_deleted",
		"identity_number", deleted.IdentityNumber,
	)

	writeJSON(w, http.StatusOK, dto.ToPersonResponse(deleted))
}

// decodePerson decodes and validates the request body into a Person.
// On failure the response has already been written.
func (h *PersonHandler) decodePerson(w http.ResponseWriter, r *http.Request) (*model.Person, bool) {
	var req dto.PersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return nil, false
	}

	person, err := model.NewPerson(req.ToInput())
	if err != nil {
		h.handleServiceError(w, err)
		return nil, false
	}

	return person, true
}

// handleServiceError maps service and validation errors to HTTP responses.
func (h *PersonHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrInvalidIdentityNumber):
		writeError(w, http.StatusBadRequest, "INVALID_IDENTITY_NUMBER", "Identity number failed checksum validation")
	case errors.Is(err, model.ErrInvalidEmail):
		writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Email address is not valid")
	case errors.Is(err, model.ErrBirthDateInFuture):
		writeError(w, http.StatusBadRequest, "BIRTH_DATE_IN_FUTURE", "Birth date is in the future")
	case errors.Is(err, model.ErrMissingName):
		writeError(w, http.StatusBadRequest, "MISSING_NAME", "First and last name are required")
	case errors.Is(err, service.ErrIdentityMismatch):
		writeError(w, http.StatusBadRequest, "IDENTITY_MISMATCH", "Identity number in the path does not match the body")
	case errors.Is(err, service.ErrPersonNotFound):
		writeError(w, http.StatusNotFound, "PERSON_NOT_FOUND", "Person does not exist")
	case errors.Is(err, service.ErrDuplicateIdentity):
		writeError(w, http.StatusConflict, "DUPLICATE_IDENTITY", "The identity number is already registered")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
