package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/baldagame/internal/model"
	"github.com/mcoot/baldagame/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Reason is set for rejected moves
	Reason model.RejectReason `json:"reason,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidName        = "INVALID_NAME"
	CodeInvalidLetter      = "INVALID_LETTER"
	CodeInvalidDirection   = "INVALID_DIRECTION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeNotHost            = "NOT_HOST"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeMoveRejected       = "MOVE_REJECTED"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeRosterFull         = "ROSTER_FULL"
	CodeRosterTooSmall     = "ROSTER_TOO_SMALL"
	CodePassUsed           = "PASS_USED"
	CodeAlreadyEliminated  = "ALREADY_ELIMINATED"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeLobbyNotFound      = "LOBBY_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeAlreadyInGame      = "ALREADY_IN_GAME"
	CodeNotInGame          = "NOT_IN_GAME"
	CodeGameInProgress     = "GAME_IN_PROGRESS"
	CodeUsernameExists     = "USERNAME_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var rejection *model.RejectionError
	if errors.As(err, &rejection) {
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeMoveRejected, "Move rejected", rejection.Reason}}
	}

	// Roster sentinels also match ErrInvalidTransition, so they go first
	switch {
	case errors.Is(err, model.ErrRosterFull):
		return newHTTPError(http.StatusConflict, CodeRosterFull, "Lobby is full")
	case errors.Is(err, model.ErrRosterTooSmall):
		return newHTTPError(http.StatusConflict, CodeRosterTooSmall, "Not enough players to start")
	case errors.Is(err, model.ErrInvalidTransition):
		return newHTTPError(http.StatusConflict, CodeInvalidTransition, "Not allowed in the current phase")
	case errors.Is(err, model.ErrNotYourTurn):
		return newHTTPError(http.StatusForbidden, CodeNotYourTurn, "Not your turn")
	case errors.Is(err, model.ErrPassUsed):
		return newHTTPError(http.StatusConflict, CodePassUsed, "Pass already used")
	case errors.Is(err, model.ErrAlreadyEliminated):
		return newHTTPError(http.StatusConflict, CodeAlreadyEliminated, "Player is already eliminated")
	case errors.Is(err, model.ErrInvalidDirection):
		return newHTTPError(http.StatusBadRequest, CodeInvalidDirection, "Direction must be left or right")
	case errors.Is(err, model.ErrInvalidLetter):
		return newHTTPError(http.StatusBadRequest, CodeInvalidLetter, "Letter must be a single cyrillic letter")
	case errors.Is(err, model.ErrInvalidName):
		return newHTTPError(http.StatusBadRequest, CodeInvalidName, "Display name must be 2 to 32 characters")
	case errors.Is(err, model.ErrPlayerNotFound):
		return newHTTPError(http.StatusNotFound, CodePlayerNotFound, "Player not found")
	case errors.Is(err, model.ErrJoinCodeNotFound):
		return newHTTPError(http.StatusNotFound, CodeLobbyNotFound, "Lobby not found")
	case errors.Is(err, model.ErrGameNotFound):
		return newHTTPError(http.StatusNotFound, CodeGameNotFound, "Game not found")
	case errors.Is(err, model.ErrAlreadyInGame):
		return newHTTPError(http.StatusConflict, CodeAlreadyInGame, "Already in this game")
	case errors.Is(err, model.ErrNotInGame):
		return newHTTPError(http.StatusForbidden, CodeNotInGame, "Not in this game")
	case errors.Is(err, model.ErrNotHost):
		return newHTTPError(http.StatusForbidden, CodeNotHost, "Only the host can perform this action")
	case errors.Is(err, model.ErrGameInProgress):
		return newHTTPError(http.StatusConflict, CodeGameInProgress, "Game is in progress")

	case errors.Is(err, auth.ErrInvalidCredentials):
		return newHTTPError(http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
	case errors.Is(err, auth.ErrInvalidSession):
		return newHTTPError(http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired session")
	case errors.Is(err, auth.ErrUsernameExists):
		return newHTTPError(http.StatusConflict, CodeUsernameExists, "Username already exists")

	default:
		return newHTTPError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
	}
}

func newHTTPError(status int, code, message string) *httpError {
	return &httpError{status, APIError{Code: code, Message: message}}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return newHTTPError(http.StatusBadRequest, CodeInvalidRequest, message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return newHTTPError(http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return newHTTPError(http.StatusInternalServerError, CodeInternalError, "Internal server error")
}
