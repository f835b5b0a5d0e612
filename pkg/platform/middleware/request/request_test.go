package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	serve := func(incoming string) (string, *httptest.ResponseRecorder) {
		var seen string
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			seen = requestcontext.RequestID(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(HeaderRequestID, incoming)
		}
		w := httptest.NewRecorder()
		RequestID(next).ServeHTTP(w, req)
		return seen, w
	}

	t.Run("caller id is propagated", func(t *testing.T) {
		seen, w := serve("import-42")
		assert.Equal(t, "import-42", seen)
		assert.Equal(t, "import-42", w.Header().Get(HeaderRequestID))
	})

	t.Run("missing id is generated", func(t *testing.T) {
		seen, w := serve("")
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
	})

	t.Run("oversized id is replaced", func(t *testing.T) {
		seen, _ := serve(strings.Repeat("x", maxRequestIDLength+1))
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})
}
