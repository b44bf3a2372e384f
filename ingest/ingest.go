// Package ingest implements the ingestor: the goroutine that tails the
// log file, parses newly written lines, and publishes contiguous Index
// partials onto the bus.
package ingest

import (
	"bufio"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/llqtool/llq/bus"
	"github.com/llqtool/llq/index"
	"github.com/llqtool/llq/internal/logging"
	"github.com/llqtool/llq/query"
)

// pollInterval is how long the Ingestor sleeps after hitting EOF before
// checking again.
const pollInterval = 10 * time.Millisecond

// Ingestor tails path, publishing contiguous Index partials onto bus
// until Stop is called.
type Ingestor struct {
	path string
	bus  *bus.Bus
	log  *logging.Logger

	shouldShutdown atomic.Bool
}

// New builds an Ingestor for path. log may be nil for silent operation.
func New(path string, b *bus.Bus, log *logging.Logger) *Ingestor {
	return &Ingestor{path: path, bus: b, log: log}
}

// Stop requests cooperative shutdown: Run leaves its sleep loop on its
// next wake.
func (ing *Ingestor) Stop() {
	ing.shouldShutdown.Store(true)
}

func (ing *Ingestor) info(msg string, fields logging.Fields) {
	if ing.log != nil {
		ing.log.Info(msg, fields)
	}
}

func (ing *Ingestor) fatal(msg string, fields logging.Fields) {
	if ing.log != nil {
		ing.log.Fatal(msg, fields)
		return
	}
	panic(msg)
}

// Run opens the log file and tails it until Stop is called. An open
// failure is fatal at startup; a read failure during the tail is fatal
// to the ingestor goroutine only.
func (ing *Ingestor) Run() {
	f, err := os.Open(ing.path)
	if err != nil {
		ing.fatal("failed to open log file", logging.Fields{"path": ing.path, "error": err.Error()})
		return
	}
	defer f.Close()

	watcher, werr := fsnotify.NewWatcher()
	if werr == nil {
		defer watcher.Close()
		_ = watcher.Add(ing.path)
	}

	reader := bufio.NewReader(f)
	partial := index.New(0)
	lastLineNumberSent := -1
	linePos := int64(0) // logical byte offset of the next unread line

	for {
		if ing.shouldShutdown.Load() {
			ing.info("ingestor stopping", nil)
			return
		}

		line, rerr := reader.ReadString('\n')
		complete := rerr == nil
		if !complete && rerr != io.EOF {
			ing.fatal("read error during tail", logging.Fields{"error": rerr.Error()})
			return
		}

		if !complete {
			// Either truly at EOF (line == "") or a trailing line with
			// no newline yet (still being written): don't consume it
			// either way, wait and retry from linePos.
			partial = ing.flushAndRewind(partial, &lastLineNumberSent, f, reader, linePos)
			ing.sleep(watcher)
			continue
		}

		rec, perr := query.ParseRecord([]byte(trimNewline(line)))
		if perr != nil {
			ing.info("ParseLine: unparsable line left unread, will retry", logging.Fields{"error": perr.Error()})
			partial = ing.flushAndRewind(partial, &lastLineNumberSent, f, reader, linePos)
			ing.sleep(watcher)
			continue
		}

		partial.Append(rec)
		linePos += int64(len(line))
	}
}

func trimNewline(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
	}
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

// flushAndRewind publishes partial if it holds any lines and returns the
// Index to keep accumulating into (a fresh one starting where the
// published partial left off, or partial unchanged if nothing was
// published). It also rewinds f/reader to pos so the next ReadString
// re-reads from there.
func (ing *Ingestor) flushAndRewind(partial *index.Index, lastLineNumberSent *int, f *os.File, reader *bufio.Reader, pos int64) *index.Index {
	next := partial
	if len(partial.Lines) > 0 {
		if partial.StartIdx > *lastLineNumberSent+1 {
			ing.fatal("IndexGap: partial index starts past the last sent line", logging.Fields{
				"start_idx": partial.StartIdx, "last_sent": *lastLineNumberSent,
			})
			return partial
		}
		newStartIdx := partial.StartIdx + len(partial.Lines)
		*lastLineNumberSent = newStartIdx - 1
		ing.info("publishing partial index", logging.Fields{"start_idx": partial.StartIdx, "lines": len(partial.Lines)})
		ing.bus.SendIndex(partial)
		next = index.New(newStartIdx)
	}

	if _, err := f.Seek(pos, io.SeekStart); err != nil {
		ing.fatal("seek failed resetting tail position", logging.Fields{"error": err.Error()})
		return next
	}
	reader.Reset(f)
	return next
}

// sleep waits for new data: either a filesystem notification on the
// tailed file (an optional fast path layered on top of, not instead of,
// the required poll) or pollInterval, whichever comes first.
func (ing *Ingestor) sleep(watcher *fsnotify.Watcher) {
	if watcher == nil {
		time.Sleep(pollInterval)
		return
	}
	select {
	case <-watcher.Events:
	case <-watcher.Errors:
	case <-time.After(pollInterval):
	}
}
