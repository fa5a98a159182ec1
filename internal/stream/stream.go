// Package stream replays a finished answer as a typing effect: one grapheme
// cluster per write, flushed, with a short pause between writes.
package stream

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rivo/uniseg"
)

// AcceptHeader is the exact Accept value that selects a streamed reply.
const AcceptHeader = "text/event-stream"

const ContentType = "text/plain; charset=utf-8"

// DefaultDelay is the pause between chunks.
const DefaultDelay = 10 * time.Millisecond

// Wanted reports whether accept asks for a streamed reply. Only an exact match counts.
func Wanted(accept string) bool {
	return accept == AcceptHeader
}

// SetHeaders prepares h for an unbuffered plain-text stream.
func SetHeaders(h http.Header) {
	h.Set("Cache-Control", "no-cache")
	h.Set("Content-Type", ContentType)
	h.Set("X-Accel-Buffering", "no")
}

// Graphemes splits text into user-perceived characters so combining marks
// and emoji sequences are never cut.
func Graphemes(text string) []string {
	var out []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Write sends text to w chunk by chunk, flushing after each chunk when w is
// an http.Flusher. It stops early when ctx is done or a write fails.
func Write(ctx context.Context, w io.Writer, text string, delay time.Duration) error {
	flusher, _ := w.(http.Flusher)
	chunks := Graphemes(text)

	var timer *time.Timer
	if delay > 0 {
		timer = time.NewTimer(delay)
		timer.Stop()
		defer timer.Stop()
	}

	for i, chunk := range chunks {
		if _, err := io.WriteString(w, chunk); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		if timer == nil || i == len(chunks)-1 {
			continue
		}

		timer.Reset(delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}
