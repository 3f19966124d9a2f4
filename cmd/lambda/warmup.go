package main

import (
	"context"
	"encoding/json"
	"time"
)

const (
	// WarmupSource identifies scheduled keep-warm events.
	WarmupSource = "warmup"

	// WarmupDelay is how long a warmup invocation stays busy.
	WarmupDelay = 75 * time.Millisecond
)

// WarmupEvent is the scheduled keep-warm payload.
type WarmupEvent struct {
	Source string `json:"source"`
}

// IsWarmupEvent checks if the event is a warmup event.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var w WarmupEvent
	if err := json.Unmarshal(event, &w); err != nil || w.Source != WarmupSource {
		return nil, false
	}
	return &w, true
}

// HandleWarmup answers a warmup event without touching the pipeline.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent) *Response {
	select {
	case <-ctx.Done():
	case <-time.After(WarmupDelay):
	}
	return &Response{RequestID: WarmupSource}
}
