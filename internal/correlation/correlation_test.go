package correlation

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/logger"
)

func runRequest(t *testing.T, headerValue string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var seenInHandler string
	handler := Middleware(logger.NewWithWriter(io.Discard))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seenInHandler = FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	if headerValue != "" {
		req.Header.Set(HeaderName, headerValue)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, seenInHandler
}

func TestGeneratesIDWhenHeaderAbsent(t *testing.T) {
	rec, seen := runRequest(t, "")

	echoed := rec.Header().Get(HeaderName)
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seen)

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestEchoesValidInboundID(t *testing.T) {
	rec, seen := runRequest(t, "demo-123")

	assert.Equal(t, "demo-123", rec.Header().Get(HeaderName))
	assert.Equal(t, "demo-123", seen)
}

func TestTrimsSurroundingWhitespace(t *testing.T) {
	rec, _ := runRequest(t, "  demo-123  ")

	assert.Equal(t, "demo-123", rec.Header().Get(HeaderName))
}

func TestReplacesIDWithForbiddenCharacters(t *testing.T) {
	rec, _ := runRequest(t, "demo 123")

	echoed := rec.Header().Get(HeaderName)
	require.NotEmpty(t, echoed)
	assert.NotEqual(t, "demo 123", echoed)
	_, err := uuid.Parse(echoed)
	assert.NoError(t, err)
}

func TestReplacesOversizedID(t *testing.T) {
	long := strings.Repeat("a", 65)
	rec, _ := runRequest(t, long)

	echoed := rec.Header().Get(HeaderName)
	require.NotEmpty(t, echoed)
	assert.NotEqual(t, long, echoed)
}

func TestAcceptsMaxLengthID(t *testing.T) {
	max := strings.Repeat("a", 64)
	rec, _ := runRequest(t, max)

	assert.Equal(t, max, rec.Header().Get(HeaderName))
}

func TestEmitsAccessLogLine(t *testing.T) {
	var buf strings.Builder
	handler := Middleware(logger.NewWithWriter(&buf))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	req.Header.Set(HeaderName, "demo-123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, "method=POST")
	assert.Contains(t, line, "path=/api/v1/events")
	assert.Contains(t, line, "status=201")
	assert.Contains(t, line, "correlationId=demo-123")
}

func TestAccessLogRunsWhenHandlerPanics(t *testing.T) {
	var buf strings.Builder
	handler := Middleware(logger.NewWithWriter(&buf))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	})
	assert.Contains(t, buf.String(), "method=GET")
}

func TestFromContextOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, FromContext(req.Context()))
}
