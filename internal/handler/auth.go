package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/personvault/personvault/internal/auth"
	"github.com/personvault/personvault/internal/handler/dto"
)

// AuthHandler handles login and token-protected endpoints.
type AuthHandler struct {
	provider *auth.Provider
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(provider *auth.Provider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		logger:   logger,
	}
}

// Login handles POST /token.
// Credentials arrive as an OAuth2 password-grant form: the username
// field carries the identity number. All failure modes collapse to
// the same 401 to prevent principal enumeration.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", "Invalid form body")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "username and password are required")
		return
	}

	token, err := h.provider.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrUnknownPrincipal) ||
			errors.Is(err, auth.ErrNotAdmin) ||
			errors.Is(err, auth.ErrWrongPassword) {
			h.logger.Warn("login_failed",
				"ip", r.RemoteAddr,
			)
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Incorrect username or password")
			return
		}

		h.logger.Error("login_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTokenResponse(token))
}

// Me handles GET /users/me.
// The auth middleware has already resolved the token to a person.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	person := auth.MustPersonFromContext(r.Context())
	writeJSON(w, http.StatusOK, dto.ToPersonResponse(person))
}
