package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/llqtool/llq/bus"
)

func writeTempLog(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "log.ndjson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func recvIndexWithin(t *testing.T, b *bus.Bus, timeout time.Duration) bus.Msg {
	t.Helper()
	ch := make(chan bus.Msg, 1)
	go func() { ch <- b.Recv() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a bus message")
		return bus.Msg{}
	}
}

func TestIngestorPublishesInitialBatch(t *testing.T) {
	path := writeTempLog(t, "{\"msg\":\"first message\",\"count\":1,\"tag\":5}\n{\"msg\":\"hi\",\"count\":2,\"tag\":3}\n{\"msg\":\"hi\",\"count\":3}\n{\"msg\":\"4th message\",\"count\":4,\"tag\":5}\n")

	b := bus.New()
	ing := New(path, b, nil)
	go ing.Run()
	defer ing.Stop()

	msg := recvIndexWithin(t, b, 2*time.Second)
	if msg.Kind != bus.KindIndex {
		t.Fatalf("Kind = %v, want KindIndex", msg.Kind)
	}
	if msg.Index.StartIdx != 0 || len(msg.Index.Lines) != 4 {
		t.Fatalf("got start_idx=%d lines=%d, want start_idx=0 lines=4", msg.Index.StartIdx, len(msg.Index.Lines))
	}
}

func TestIngestorPublishesSubsequentAppends(t *testing.T) {
	path := writeTempLog(t, "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n{\"a\":4}\n")

	b := bus.New()
	ing := New(path, b, nil)
	go ing.Run()
	defer ing.Stop()

	first := recvIndexWithin(t, b, 2*time.Second)
	if first.Index.StartIdx != 0 || len(first.Index.Lines) != 4 {
		t.Fatalf("first batch: start_idx=%d lines=%d", first.Index.StartIdx, len(first.Index.Lines))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString("{\"a\":5}\n{\"a\":6}\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	second := recvIndexWithin(t, b, 2*time.Second)
	if second.Index.StartIdx != 4 || len(second.Index.Lines) != 2 {
		t.Fatalf("second batch: start_idx=%d lines=%d, want start_idx=4 lines=2", second.Index.StartIdx, len(second.Index.Lines))
	}
}

func TestIngestorDoesNotConsumeUnterminatedLine(t *testing.T) {
	path := writeTempLog(t, "{\"a\":1}\n{\"a\":2")

	b := bus.New()
	ing := New(path, b, nil)
	go ing.Run()
	defer ing.Stop()

	first := recvIndexWithin(t, b, 2*time.Second)
	if len(first.Index.Lines) != 1 {
		t.Fatalf("got %d lines, want 1 (the unterminated second line must not be ingested yet)", len(first.Index.Lines))
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString("}\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	f.Close()

	second := recvIndexWithin(t, b, 2*time.Second)
	if second.Index.StartIdx != 1 || len(second.Index.Lines) != 1 {
		t.Fatalf("got start_idx=%d lines=%d, want start_idx=1 lines=1", second.Index.StartIdx, len(second.Index.Lines))
	}
}
