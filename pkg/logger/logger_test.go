package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestErrorCarriesContextFieldsAndStack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "supplyline-test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithBusinessID(ctx, "biz-1")

	log.Error(ctx, "order create failed", errors.New("boom"))

	out := buf.Bytes()
	for _, want := range []string{`"request_id":"req-123"`, `"business_id":"biz-1"`, `"stack"`} {
		if !bytes.Contains(out, []byte(want)) {
			t.Fatalf("expected %s in entry: %s", want, out)
		}
	}
}

func TestWithFieldsMergesIntoEntries(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "supplyline-test", Level: ParseLevel("debug"), Output: buf})

	ctx := log.WithFields(context.Background(), map[string]any{"order_id": "abc", "supplier_count": 3})
	log.Info(ctx, "order placed")

	out := buf.Bytes()
	if !bytes.Contains(out, []byte(`"order_id":"abc"`)) {
		t.Fatalf("expected order_id field: %s", out)
	}
	if !bytes.Contains(out, []byte(`"supplier_count":3`)) {
		t.Fatalf("expected supplier_count field: %s", out)
	}
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "supplyline-test", Level: ParseLevel("debug"), Output: buf, WarnStack: true})
	log.Warn(context.Background(), "tier replaced under load")
	if !bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack when warn stack enabled: %s", buf.String())
	}

	buf.Reset()
	quiet := New(Options{ServiceName: "supplyline-test", Level: ParseLevel("debug"), Output: buf})
	quiet.Warn(context.Background(), "quiet warn")
	if bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("did not expect stack by default: %s", buf.String())
	}
}

func TestParseLevelFallbacks(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.NoLevel {
		t.Fatalf("empty level should be NoLevel, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.NoLevel {
		t.Fatalf("invalid level should be NoLevel, got %v", lvl)
	}
	if lvl := ParseLevel("warn"); lvl != zerolog.WarnLevel {
		t.Fatalf("warn should parse, got %v", lvl)
	}
}
