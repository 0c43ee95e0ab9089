// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
)

const (
	contentTypeNDJSON = "application/x-ndjson"
	contentTypeSSE    = "text/event-stream"
)

// eventWriter is a recommend.EventSink over an HTTP response. Headers are
// written with the first event, so a request rejected before the session
// starts can still get a regular JSON error.
type eventWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	ctype   string
	frame   func(payload []byte) []byte
	started bool
}

func newNDJSONWriter(w http.ResponseWriter) *eventWriter {
	return &eventWriter{
		w:     w,
		rc:    http.NewResponseController(w),
		ctype: contentTypeNDJSON,
		frame: func(p []byte) []byte { return append(p, '\n') },
	}
}

func newSSEWriter(w http.ResponseWriter) *eventWriter {
	return &eventWriter{
		w:     w,
		rc:    http.NewResponseController(w),
		ctype: contentTypeSSE,
		frame: func(p []byte) []byte {
			out := make([]byte, 0, len(p)+8)
			out = append(out, "data: "...)
			out = append(out, p...)
			return append(out, '\n', '\n')
		},
	}
}

// newEventWriter picks the framing from the Accept header.
func newEventWriter(w http.ResponseWriter, r *http.Request) *eventWriter {
	if strings.Contains(r.Header.Get("Accept"), contentTypeNDJSON) {
		return newNDJSONWriter(w)
	}
	return newSSEWriter(w)
}

// Send implements recommend.EventSink. A write or flush failure means the
// client is gone.
func (ew *eventWriter) Send(ev recommend.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.EventType(), err)
	}

	if !ew.started {
		h := ew.w.Header()
		h.Set("Content-Type", ew.ctype)
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		ew.w.WriteHeader(http.StatusOK)
		ew.started = true
	}

	if _, err := ew.w.Write(ew.frame(payload)); err != nil {
		return fmt.Errorf("write %s event: %w", ev.EventType(), err)
	}
	if err := ew.rc.Flush(); err != nil {
		return fmt.Errorf("flush %s event: %w", ev.EventType(), err)
	}
	return nil
}

// Started reports whether any event has been written.
func (ew *eventWriter) Started() bool {
	return ew.started
}
