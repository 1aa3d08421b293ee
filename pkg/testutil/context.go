package testutil

import (
	"net/http"

	id "verdict/pkg/domain"
	"verdict/pkg/requestcontext"
)

// WithCaller attaches a juror identity to the request context, simulating
// what the auth middleware does for authenticated requests. Invalid IDs are
// silently ignored.
func WithCaller(req *http.Request, jurorID string) *http.Request {
	parsed, err := id.ParseJurorID(jurorID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithCaller(req.Context(), parsed))
}

// WithOwner marks the request context as coming from the platform owner.
func WithOwner(req *http.Request) *http.Request {
	return req.WithContext(requestcontext.WithOwner(req.Context(), true))
}
