package stream

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWanted(t *testing.T) {
	assert.True(t, Wanted("text/event-stream"))
	assert.False(t, Wanted("text/event-stream, application/json"))
	assert.False(t, Wanted("application/json"))
	assert.False(t, Wanted(""))
}

func TestGraphemes_KeepsClusters(t *testing.T) {
	text := "Kafé 🇮🇩 👍🏽!"
	chunks := Graphemes(text)

	assert.Equal(t, text, strings.Join(chunks, ""))
	assert.Equal(t, []string{"K", "a", "f", "é", " ", "🇮🇩", " ", "👍🏽", "!"}, chunks)
	assert.Empty(t, Graphemes(""))
}

type countingFlusher struct {
	*httptest.ResponseRecorder
	flushes int
}

func (c *countingFlusher) Flush() {
	c.flushes++
	c.ResponseRecorder.Flush()
}

func TestWrite_FlushesEveryChunk(t *testing.T) {
	w := &countingFlusher{ResponseRecorder: httptest.NewRecorder()}
	SetHeaders(w.Header())

	require.NoError(t, Write(context.Background(), w, "Halo ✨", time.Millisecond))

	assert.Equal(t, "Halo ✨", w.Body.String())
	assert.Equal(t, 6, w.flushes)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
}

func TestWrite_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Write(ctx, &buf, "abc", time.Second)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, "a", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, http.ErrHandlerTimeout }

func TestWrite_ReturnsWriteError(t *testing.T) {
	err := Write(context.Background(), failingWriter{}, "abc", 0)
	assert.ErrorIs(t, err, http.ErrHandlerTimeout)
}
