package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/baldagame/internal/api/apierr"
	"github.com/mcoot/baldagame/internal/middleware"
)

// Recovery answers handler panics with a JSON internal error
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}

// Logging logs each API request with its id
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Logging(logger)
}
