package formstate

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-formstate/pkg/input"
	"github.com/goliatone/go-formstate/pkg/session"
)

// SessionProvider resolves the session of an incoming request.
type SessionProvider interface {
	Session(r *http.Request) (session.Session, error)
}

// SessionProviderFunc adapts a function to SessionProvider.
type SessionProviderFunc func(r *http.Request) (session.Session, error)

// Session implements SessionProvider.
func (fn SessionProviderFunc) Session(r *http.Request) (session.Session, error) {
	return fn(r)
}

// Middleware stores a Forms registry in each request context, built from the
// provider's session and the parsed request input. Handlers open forms with
// FormFromContext.
func Middleware(provider SessionProvider, opts ...Option) func(http.Handler) http.Handler {
	logger := applyOptions(opts).logger.With(slog.String("component", "formstate"))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if provider == nil {
				logger.Error("form middleware has no session provider")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			sess, err := provider.Session(r)
			if err != nil {
				logger.Error("resolve session failed", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			in, err := input.FromRequest(r)
			if err != nil {
				status := http.StatusBadRequest
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					status = http.StatusRequestEntityTooLarge
				}
				logger.Warn("parse request input failed", slog.Any("error", err))
				http.Error(w, http.StatusText(status), status)
				return
			}

			all := make([]Option, 0, len(opts)+2)
			all = append(all, opts...)
			all = append(all, WithSession(sess), WithInput(in))
			forms := NewForms(all...)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), forms)))
		})
	}
}
