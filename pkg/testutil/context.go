package testutil

import (
	"context"
	"net/http"
	"time"

	id "ayuda/pkg/domain"
	"ayuda/pkg/requestcontext"
)

// AsActor returns ctx carrying userID and a pinned request time, the state
// the auth and request-time middleware leave behind.
func AsActor(ctx context.Context, userID id.UserID, now time.Time) context.Context {
	ctx = requestcontext.WithUserID(ctx, userID)
	return requestcontext.WithTime(ctx, now)
}

// WithActor is AsActor for a request.
func WithActor(req *http.Request, userID id.UserID, now time.Time) *http.Request {
	return req.WithContext(AsActor(req.Context(), userID, now))
}
