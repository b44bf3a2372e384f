package query

import (
	"strings"

	"github.com/dchest/siphash"
)

// pathHashKey0/pathHashKey1 are fixed SipHash keys. They only need to be
// stable across calls within a process — the front hash is used purely
// as a BitSet map key, never persisted or compared across processes.
const (
	pathHashKey0 = 0x6c6c712d68617368
	pathHashKey1 = 0x66726f6e742d686d
)

// Path is either the wildcard (matches every record) or an ordered,
// non-empty sequence of segments.
type Path struct {
	wildcard  bool
	segments  []string
	frontHash uint64
}

// Wildcard returns the path that matches every record.
func Wildcard() Path {
	return Path{wildcard: true}
}

// NewPath builds a Path from an already-split, non-empty segment list.
func NewPath(segments []string) Path {
	segs := append([]string(nil), segments...)
	p := Path{segments: segs}
	if len(segs) > 0 {
		p.frontHash = siphash.Hash(pathHashKey0, pathHashKey1, []byte(segs[0]))
	}
	return p
}

// ParsePath parses the debug/CLI textual form: "*" for wildcard, else
// dot-separated segments ("foo.bar"). The keystroke-driven grammar parser
// in parser.go builds Paths directly from segment lists instead of
// calling this; ParsePath exists for callers (tests) that work from
// plain strings.
func ParsePath(text string) Path {
	if text == "*" {
		return Wildcard()
	}
	return NewPath(strings.Split(text, "."))
}

// IsWildcard reports whether p is the wildcard path.
func (p Path) IsWildcard() bool { return p.wildcard }

// Segments returns the ordered segment list. Empty for the wildcard.
func (p Path) Segments() []string { return p.segments }

// FrontHash returns the stable hash of the first segment, used as the
// bitsets map key. Meaningless for the wildcard.
func (p Path) FrontHash() uint64 { return p.frontHash }

// Equal reports whether two paths name the same sequence of segments.
// Equality compares segments directly; FrontHash is a map key only,
// never an equality proxy.
func (p Path) Equal(o Path) bool {
	if p.wildcard || o.wildcard {
		return p.wildcard == o.wildcard
	}
	if len(p.segments) != len(o.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != o.segments[i] {
			return false
		}
	}
	return true
}

// JSONPointer renders the path in JSON-pointer form ("/foo/bar"), the
// internal lookup form.
func (p Path) JSONPointer() string {
	if p.wildcard || len(p.segments) == 0 {
		return ""
	}
	return "/" + strings.Join(p.segments, "/")
}

// String renders the path in its dotted textual form ("foo.bar", or "*"
// for the wildcard).
func (p Path) String() string {
	if p.wildcard {
		return "*"
	}
	return strings.Join(p.segments, ".")
}
