package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatal("expected generated export name")
	}

	ctx := context.Background()
	rec.Observe(ctx, OpEntityAdded, true, 20*time.Millisecond)
	rec.Observe(ctx, OpEntityAdded, true, 30*time.Millisecond)
	rec.Observe(ctx, OpEntityAdded, false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Second) // ignored

	snap := rec.Snapshot()
	if got := snap.DurationsMS[OpEntityAdded]; got != 55 {
		t.Fatalf("expected 55ms total, got %v", got)
	}
	if snap.Results[OpEntityAdded]["success"] != 2 || snap.Results[OpEntityAdded]["error"] != 1 {
		t.Fatalf("unexpected result counters: %+v", snap.Results)
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), OpInsightComputed)
	span.End(nil)
	_, span = tracer.Start(context.Background(), OpEntityRemoved)
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(entries))
	}
	if entries[0].Operation != OpInsightComputed || entries[0].Status != "success" {
		t.Fatalf("unexpected first span: %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("unexpected second span: %+v", entries[1])
	}

	dec := json.NewDecoder(&buf)
	var lines int
	for dec.More() {
		var entry JSONTraceEntry
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode span line: %v", err)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected 2 encoded lines, got %d", lines)
	}
}
