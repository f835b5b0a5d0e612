package testutil

import (
	"net/http"

	"tracker/pkg/requestcontext"
)

// WithActor attaches an authenticated actor to the request, as the auth
// middleware would.
func WithActor(req *http.Request, userID, username string, superuser bool) *http.Request {
	ctx := requestcontext.WithActor(req.Context(), requestcontext.ActorInfo{
		UserID:    userID,
		Username:  username,
		Superuser: superuser,
	})
	return req.WithContext(ctx)
}
