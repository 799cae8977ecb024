package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
)

const maxJSONBody = 1 << 20

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type errorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", zap.Int("status", status), zap.Error(err))
	}
}

func respond(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	respondJSON(ctx, w, status, envelope{StatusCode: status, Data: data, Message: message, Success: true})
}

// respondError renders err in the error envelope. Internal and upstream failures are logged
// with their cause and answered with a generic message.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if errors.Is(err, middleware.ErrTooManyRequests) {
		logger.Warn("rate limit exceeded")
		respondJSON(ctx, w, http.StatusTooManyRequests, errorEnvelope{
			StatusCode: http.StatusTooManyRequests, Message: err.Error(),
		})
		return
	}

	kind := apperr.KindOf(err)
	status := kind.Status()
	body := errorEnvelope{StatusCode: status, Message: apperr.Message(err), Errors: apperr.DetailsOf(err)}

	switch kind {
	case apperr.KindInternal, apperr.KindUpstream:
		logger.Error("request failed", zap.String("kind", kind.String()), zap.Error(err))
		body.Message = "something went wrong while processing the request"
		body.Errors = nil
	default:
		logger.Warn("request rejected", zap.String("kind", kind.String()), zap.String("reason", body.Message))
	}

	respondJSON(ctx, w, status, body)
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched when optional.
func decodeJSON(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// currentUser returns the user attached by the authenticator. Routes that require a session
// always have one.
func currentUser(r *http.Request) (string, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return "", false
	}
	return user.ID, true
}

func viewerID(r *http.Request) string {
	id, _ := currentUser(r)
	return id
}
