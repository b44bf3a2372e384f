package query

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Record is a parsed JSON object with its top-level keys kept in
// source order, so wildcard projections and formatted output reproduce
// the original field order.
type Record struct {
	keys  []string
	vals  []interface{}
	index map[string]int
}

// Len returns the number of top-level fields.
func (r *Record) Len() int { return len(r.keys) }

// Key returns the i'th top-level key in source order.
func (r *Record) Key(i int) string { return r.keys[i] }

// Value returns the i'th top-level decoded value in source order.
func (r *Record) Value(i int) interface{} { return r.vals[i] }

// HasTopLevel reports whether key is a top-level field of the record.
// This is the predicate the ingestor's per-key BitSets track.
func (r *Record) HasTopLevel(key string) bool {
	_, ok := r.index[key]
	return ok
}

// Has reports whether path resolves to something in the record. The
// wildcard always resolves.
func (r *Record) Has(p Path) bool {
	if p.IsWildcard() {
		return true
	}
	_, ok := r.resolve(p.Segments())
	return ok
}

// Leaf resolves path to its terminal JSON value. ok is false if any
// segment is missing; value is the decoded value (which may itself be a
// non-leaf object/array — callers check that with FromJSON).
func (r *Record) Leaf(p Path) (value interface{}, ok bool) {
	if p.IsWildcard() {
		return nil, false
	}
	return r.resolve(p.Segments())
}

func (r *Record) resolve(segments []string) (interface{}, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	idx, ok := r.index[segments[0]]
	if !ok {
		return nil, false
	}
	cur := r.vals[idx]
	for _, seg := range segments[1:] {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Project builds a new ordered Record restricted to paths, in the order
// given — wildcard projects every top-level field in source order.
// Paths that don't resolve are skipped.
func (r *Record) Project(paths []Path) *Record {
	out := &Record{index: make(map[string]int)}
	appendField := func(key string, val interface{}) {
		if _, dup := out.index[key]; dup {
			return
		}
		out.index[key] = len(out.keys)
		out.keys = append(out.keys, key)
		out.vals = append(out.vals, val)
	}
	for _, p := range paths {
		if p.IsWildcard() {
			for i, k := range r.keys {
				appendField(k, r.vals[i])
			}
			continue
		}
		v, ok := r.resolve(p.Segments())
		if !ok {
			continue
		}
		appendField(p.String(), v)
	}
	return out
}

// Format renders the record as "k1: v1,  k2: v2" with JSON-serialized
// values, two spaces after each comma.
func (r *Record) Format() string {
	out := getLineBuf()
	for i := range r.keys {
		if i > 0 {
			out = append(out, ',', ' ', ' ')
		}
		out = append(out, r.keys[i]...)
		out = append(out, ':', ' ')
		out = append(out, formatJSONValue(r.vals[i])...)
	}
	s := string(out)
	putLineBuf(out)
	return s
}

func formatJSONValue(v interface{}) string {
	if val, ok := FromJSON(v); ok {
		return val.String()
	}
	b, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ParseRecord parses a single newline-delimited-JSON line into a Record,
// preserving top-level key order. Only JSON objects are accepted; any
// other top-level shape is a recoverable parse failure.
//
// The scan is a hand-rolled single pass over the bytes that locates
// top-level key/value boundaries; each value's bytes are then handed to
// sonic for the actual decode, keeping the hot path off
// encoding/json's reflection-heavy decoder.
func ParseRecord(line []byte) (*Record, error) {
	s := &scanner{data: line}
	s.skipSpace()
	if !s.consumeByte('{') {
		return nil, fmt.Errorf("llq: line is not a JSON object")
	}

	rec := &Record{index: make(map[string]int)}
	s.skipSpace()
	if s.consumeByte('}') {
		return rec, s.finish()
	}

	for {
		s.skipSpace()
		key, err := s.scanString()
		if err != nil {
			return nil, fmt.Errorf("llq: parsing key: %w", err)
		}
		s.skipSpace()
		if !s.consumeByte(':') {
			return nil, fmt.Errorf("llq: expected ':' after key %q", key)
		}
		s.skipSpace()
		valStart := s.pos
		if err := s.scanValue(); err != nil {
			return nil, fmt.Errorf("llq: parsing value for key %q: %w", key, err)
		}
		raw := s.data[valStart:s.pos]

		var decoded interface{}
		if err := sonic.Unmarshal(raw, &decoded); err != nil {
			return nil, fmt.Errorf("llq: decoding value for key %q: %w", key, err)
		}

		if _, dup := rec.index[key]; !dup {
			rec.index[key] = len(rec.keys)
			rec.keys = append(rec.keys, key)
			rec.vals = append(rec.vals, decoded)
		} else {
			rec.vals[rec.index[key]] = decoded
		}

		s.skipSpace()
		if s.consumeByte(',') {
			continue
		}
		if s.consumeByte('}') {
			break
		}
		return nil, fmt.Errorf("llq: expected ',' or '}' at byte %d", s.pos)
	}

	return rec, s.finish()
}

// finish allows (but does not require) trailing whitespace after the
// closing brace.
func (s *scanner) finish() error {
	s.skipSpace()
	if s.pos != len(s.data) {
		return fmt.Errorf("llq: unexpected data after closing brace at byte %d", s.pos)
	}
	return nil
}

// scanner is a minimal hand-rolled byte-position JSON cursor used only
// to find top-level key/value boundaries; it does not itself build
// decoded values.
type scanner struct {
	data []byte
	pos  int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) consumeByte(b byte) bool {
	if s.pos < len(s.data) && s.data[s.pos] == b {
		s.pos++
		return true
	}
	return false
}

// scanString expects the cursor at an opening '"' and returns the
// unescaped string, advancing past the closing quote.
func (s *scanner) scanString() (string, error) {
	if !s.consumeByte('"') {
		return "", fmt.Errorf("expected '\"' at byte %d", s.pos)
	}
	start := s.pos
	hasEscape := false
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '\\' {
			hasEscape = true
			s.pos += 2
			continue
		}
		if c == '"' {
			raw := s.data[start:s.pos]
			s.pos++
			if !hasEscape {
				return string(raw), nil
			}
			quoted := make([]byte, 0, len(raw)+2)
			quoted = append(quoted, '"')
			quoted = append(quoted, raw...)
			quoted = append(quoted, '"')
			var unescaped string
			if err := sonic.Unmarshal(quoted, &unescaped); err != nil {
				return "", err
			}
			return unescaped, nil
		}
		s.pos++
	}
	return "", fmt.Errorf("unterminated string starting at byte %d", start)
}

// scanValue advances the cursor past one complete JSON value (object,
// array, string, number, or literal) without building it.
func (s *scanner) scanValue() error {
	if s.pos >= len(s.data) {
		return fmt.Errorf("unexpected end of input")
	}
	switch s.data[s.pos] {
	case '{':
		return s.scanBraced('{', '}')
	case '[':
		return s.scanBraced('[', ']')
	case '"':
		_, err := s.scanString()
		return err
	default:
		return s.scanLiteralOrNumber()
	}
}

func (s *scanner) scanBraced(open, close byte) error {
	depth := 0
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case c == '"':
			if _, err := s.scanString(); err != nil {
				return err
			}
			continue
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				s.pos++
				return nil
			}
		}
		s.pos++
	}
	return fmt.Errorf("unterminated value, missing %q", close)
}

func (s *scanner) scanLiteralOrNumber() error {
	start := s.pos
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ',', '}', ']', ' ', '\t', '\n', '\r':
			if s.pos == start {
				return fmt.Errorf("empty value at byte %d", s.pos)
			}
			return nil
		default:
			s.pos++
		}
	}
	if s.pos == start {
		return fmt.Errorf("empty value at byte %d", s.pos)
	}
	return nil
}
