package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/aureliajewels/storefront-core/api/responses"
	"github.com/aureliajewels/storefront-core/api/validators"
	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"
	"github.com/aureliajewels/storefront-core/pkg/logger"
	"github.com/aureliajewels/storefront-core/pkg/session"
)

type sessionAware interface {
	StartSession(ctx context.Context, token string)
	EndSession()
}

type startSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func newSessionResponse(authenticated bool, info session.TokenInfo) sessionResponse {
	resp := sessionResponse{Authenticated: authenticated, Subject: info.Subject}
	if !info.ExpiresAt.IsZero() {
		resp.ExpiresAt = &info.ExpiresAt
	}
	return resp
}

// SessionStart installs a session token and triggers the one-shot batch
// sync on each store that holds pre-login state.
func SessionStart(holder *session.Holder, logg *logger.Logger, stores ...sessionAware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if holder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session holder unavailable"))
			return
		}

		var payload startSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		info, err := holder.Set(payload.Token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid session token"))
			return
		}

		for _, store := range stores {
			if store != nil {
				store.StartSession(r.Context(), payload.Token)
			}
		}

		responses.WriteSuccess(w, newSessionResponse(true, info))
	}
}

// SessionEnd clears the session token. Store state is kept.
func SessionEnd(holder *session.Holder, logg *logger.Logger, stores ...sessionAware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if holder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session holder unavailable"))
			return
		}

		holder.Clear()
		for _, store := range stores {
			if store != nil {
				store.EndSession()
			}
		}

		responses.WriteSuccess(w, newSessionResponse(false, session.TokenInfo{}))
	}
}

// SessionInfo reports the current session state.
func SessionInfo(holder *session.Holder, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if holder == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "session holder unavailable"))
			return
		}

		_, authenticated := holder.Token()
		responses.WriteSuccess(w, newSessionResponse(authenticated, holder.Info()))
	}
}
