// Package service implements the query service: the single-threaded
// state machine that owns the Index, merges incoming partials, and
// re-evaluates the last query whenever the index changes.
package service

import (
	"sync"

	"github.com/llqtool/llq/bitset"
	"github.com/llqtool/llq/bus"
	"github.com/llqtool/llq/index"
	"github.com/llqtool/llq/internal/logging"
	"github.com/llqtool/llq/query"
)

// Result is an immutable snapshot of the last query that produced
// output, plus the formatted lines it matched, newest first. Readers
// (the UI) take the lock only long enough to clone or format it; the
// Service builds a full Result and then swaps it in.
type Result struct {
	Query query.Query
	Lines []string
}

// ResultCell is QueryResult's single-reader/single-writer lock cell.
type ResultCell struct {
	mu     sync.RWMutex
	result Result
}

// Load returns the current Result.
func (c *ResultCell) Load() Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

func (c *ResultCell) store(r Result) {
	c.mu.Lock()
	c.result = r
	c.mu.Unlock()
}

// Service owns the Index and the ResultCell. It is driven by Run, which
// blocks reading the bus until a StopSignal arrives.
type Service struct {
	bus      *bus.Bus
	result   *ResultCell
	log      *logging.Logger
	onResult func()

	idx *index.Index
	// lastQuery is the latest non-stale query received from the UI,
	// whether or not it produced output.
	lastQuery query.Query
}

// New builds a Service reading from b, publishing to cell, and calling
// onResult (e.g. tview's QueueUpdateDraw) after every Result update.
// log may be nil, in which case logging is a no-op.
func New(b *bus.Bus, cell *ResultCell, log *logging.Logger, onResult func()) *Service {
	return &Service{bus: b, result: cell, log: log, onResult: onResult, idx: index.New(0)}
}

func (s *Service) info(msg string, fields logging.Fields) {
	if s.log != nil {
		s.log.Info(msg, fields)
	}
}

// Run is the query service's main loop. It returns once a stop signal
// is received, so the caller can wait on it alongside the ingestor's
// goroutine during shutdown.
func (s *Service) Run() {
	s.info("starting query service", nil)
	for {
		msg := s.bus.Recv()
		switch msg.Kind {
		case bus.KindStop:
			s.info("query service stopping", nil)
			return
		case bus.KindQuery:
			if msg.Query.Seq < s.lastQuery.Seq {
				s.info("dropping stale query", logging.Fields{"seq": msg.Query.Seq})
				continue
			}
			s.lastQuery = msg.Query
			s.info("handling query", logging.Fields{"seq": msg.Query.Seq})
			s.handleQuery(msg.Query)
		case bus.KindIndex:
			s.info("merging index", logging.Fields{"start_idx": msg.Index.StartIdx, "lines": len(msg.Index.Lines)})
			if err := index.Merge(s.idx, msg.Index); err != nil {
				s.log.Fatal("index merge failed", logging.Fields{"error": err.Error()})
			}
			s.reevaluateLastQuery()
		}
	}
}

// reevaluateLastQuery re-runs the last query the UI submitted against
// the freshly merged Index. A seq of 0 means no query has ever been
// submitted.
func (s *Service) reevaluateLastQuery() {
	last := s.lastQuery
	if last.Seq == 0 {
		return
	}
	s.handleQuery(last)
}

// handleQuery evaluates query against the current Index and, if it
// produced any matches, swaps it into the result cell. A query that
// matches nothing leaves the previous result displayed.
func (s *Service) handleQuery(q query.Query) {
	lines := evaluate(s.idx, q)
	if len(lines) == 0 {
		return
	}
	s.result.store(Result{Query: q, Lines: lines})
	if s.onResult != nil {
		s.onResult()
	}
}

// candidateBitSet intersects the presence bitsets of every non-wildcard
// expr's path front hash, giving a necessary (not sufficient) condition
// for a line to match — mirrors linesWithPathRoot.
func candidateBitSet(idx *index.Index, q query.Query) *bitset.BitSet {
	filter := bitset.TrueMask(len(idx.Lines))
	for _, e := range q.Exprs {
		if e.Path.IsWildcard() {
			continue
		}
		bs, ok := idx.Bitsets[e.Path.FrontHash()]
		if !ok {
			continue
		}
		filter = filter.And(bs)
	}
	return filter
}

// evaluate runs query against idx: prefilter with the candidate bitset,
// scan newest-first confirming each candidate with Expr.Matches, project
// and format up to query.MaxMatches lines.
func evaluate(idx *index.Index, q query.Query) []string {
	filter := candidateBitSet(idx, q)

	var paths []query.Path
	for _, e := range q.Exprs {
		paths = append(paths, e.Path)
	}

	var lines []string
	it := filter.Reverse()
	for it.Next() {
		if len(lines) >= q.MaxMatches {
			break
		}
		i := it.Index()
		rec := idx.Lines[i]

		matches := true
		for _, e := range q.Exprs {
			if !e.Matches(rec) {
				matches = false
				break
			}
		}
		if !matches {
			continue
		}
		lines = append(lines, rec.Project(paths).Format())
	}
	return lines
}
