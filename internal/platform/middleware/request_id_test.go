package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newEngine(seen *string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AccessLog())
	r.GET("/ping", func(c *gin.Context) {
		*seen = RequestIDFrom(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestID_Generated(t *testing.T) {
	t.Parallel()

	var seen string
	w := httptest.NewRecorder()
	newEngine(&seen).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	got := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, got, seen)
}

func TestRequestID_Propagated(t *testing.T) {
	t.Parallel()

	incoming := uuid.NewString()
	var seen string
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, incoming)
	newEngine(&seen).ServeHTTP(w, req)

	assert.Equal(t, incoming, w.Header().Get(HeaderRequestID))
	assert.Equal(t, incoming, seen)
}

func TestRequestID_MalformedReplaced(t *testing.T) {
	t.Parallel()

	var seen string
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	newEngine(&seen).ServeHTTP(w, req)

	assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}
