package httpserver

import (
	"context"
	"net/http"
	"sort"
	"time"

	"tracker/pkg/platform/httputil"
)

const readinessTimeout = 2 * time.Second

// New builds the tracker HTTP server. Write timeout covers validating a
// maximum-size bundle.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Check reports whether one backing dependency is reachable.
type Check func(ctx context.Context) error

// ReadyHandler runs every check and answers 204 when all pass. Otherwise it
// answers 503 listing the failing dependencies by name.
func ReadyHandler(checks map[string]Check) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		var failing []string
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				failing = append(failing, name)
			}
		}
		if len(failing) > 0 {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string][]string{"unavailable": failing})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
