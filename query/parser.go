package query

import "strconv"

// ParseExprs parses a comma-separated list of filter atoms. It is
// hand-rolled (no regexp, no parser-combinator library) so it stays
// allocation-light and O(n) in input length — it runs on every
// keystroke. On success the entire input, modulo surrounding whitespace,
// must be consumed; otherwise ok is false.
func ParseExprs(input string) (exprs []Expr, ok bool) {
	p := &exprParser{s: input}
	p.skipSpace()

	for {
		e, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		exprs = append(exprs, e)

		p.skipSpace()
		if p.consumeByte(',') {
			p.skipSpace()
			continue
		}
		break
	}

	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, false
	}
	return exprs, true
}

// ParseQuery builds a Query from raw keystroke input, assigning seq and
// maxMatches. ok is false when input fails to parse; the caller (the
// UI) silently keeps its last-valid query in that case.
func ParseQuery(input string, seq int64, maxMatches int) (Query, bool) {
	exprs, ok := ParseExprs(input)
	if !ok {
		return Query{}, false
	}
	return Query{Seq: seq, Str: input, Exprs: exprs, MaxMatches: maxMatches}, true
}

type exprParser struct {
	s   string
	pos int
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.s) && isSpace(p.s[p.pos]) {
		p.pos++
	}
}

func (p *exprParser) consumeByte(b byte) bool {
	if p.pos < len(p.s) && p.s[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) hasPrefix(prefix string) bool {
	if p.pos+len(prefix) > len(p.s) {
		return false
	}
	return p.s[p.pos:p.pos+len(prefix)] == prefix
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isAlpha(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// parseExpr implements expr := (path | glob) op? rhs?.
func (p *exprParser) parseExpr() (Expr, bool) {
	path, ok := p.parsePathOrGlob()
	if !ok {
		return Expr{}, false
	}

	save := p.pos
	p.skipSpace()
	op, hasOp := p.parseOp()
	if !hasOp {
		// No operator: a bare rhs here would mean "rhs without op",
		// which the grammar rejects.
		if p.looksLikeRHSStart() {
			return Expr{}, false
		}
		p.pos = save
		return NewPresenceExpr(path), true
	}

	p.skipSpace()
	rhs, ok := p.parseRHS()
	if !ok {
		// op present but rhs missing: also rejected.
		return Expr{}, false
	}
	return NewExpr(path, op, rhs), true
}

func (p *exprParser) looksLikeRHSStart() bool {
	if p.pos >= len(p.s) {
		return false
	}
	c := p.s[p.pos]
	return c == '\'' || c == '-' || c == '+' || isDigit(c)
}

// parsePathOrGlob implements path | glob, where path := alpha+ ('.'
// alpha+)* and glob := '*'.
func (p *exprParser) parsePathOrGlob() (Path, bool) {
	if p.consumeByte('*') {
		return Wildcard(), true
	}

	if p.pos >= len(p.s) || !isAlpha(p.s[p.pos]) {
		return Path{}, false
	}

	var segments []string
	segStart := p.pos
	for p.pos < len(p.s) && isAlpha(p.s[p.pos]) {
		p.pos++
	}
	segments = append(segments, p.s[segStart:p.pos])

	for p.pos < len(p.s) && p.s[p.pos] == '.' {
		dotPos := p.pos
		p.pos++
		segStart = p.pos
		if p.pos >= len(p.s) || !isAlpha(p.s[p.pos]) {
			p.pos = dotPos
			break
		}
		for p.pos < len(p.s) && isAlpha(p.s[p.pos]) {
			p.pos++
		}
		segments = append(segments, p.s[segStart:p.pos])
	}

	return NewPath(segments), true
}

// parseOp implements op := '<' | '==' | '>' | 'in' | 'fzf'.
func (p *exprParser) parseOp() (Op, bool) {
	switch {
	case p.hasPrefix("=="):
		p.pos += 2
		return OpEq, true
	case p.hasPrefix("in") && p.wordBoundaryAfter(2):
		p.pos += 2
		return OpIn, true
	case p.hasPrefix("fzf") && p.wordBoundaryAfter(3):
		p.pos += 3
		return OpFzf, true
	case p.pos < len(p.s) && p.s[p.pos] == '<':
		p.pos++
		return OpLt, true
	case p.pos < len(p.s) && p.s[p.pos] == '>':
		p.pos++
		return OpGt, true
	default:
		return OpNone, false
	}
}

// wordBoundaryAfter reports whether the keyword of length n starting at
// p.pos is not immediately followed by another alpha character, so
// "in" doesn't misfire against a path-like token such as "insomething".
func (p *exprParser) wordBoundaryAfter(n int) bool {
	end := p.pos + n
	return end >= len(p.s) || !isAlpha(p.s[end])
}

// parseRHS implements rhs := number | single_quoted_string.
func (p *exprParser) parseRHS() (Value, bool) {
	if p.pos >= len(p.s) {
		return Value{}, false
	}
	if p.s[p.pos] == '\'' {
		return p.parseSingleQuotedString()
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (Value, bool) {
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
		p.pos++
	}

	intStart := p.pos
	for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
		p.pos++
	}
	hasInt := p.pos > intStart

	hasFrac := false
	if p.pos < len(p.s) && p.s[p.pos] == '.' {
		dotPos := p.pos
		p.pos++
		fracStart := p.pos
		for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			p.pos++
		}
		hasFrac = p.pos > fracStart
		if !hasInt && !hasFrac {
			p.pos = dotPos
		}
	}

	if !hasInt && !hasFrac {
		p.pos = start
		return Value{}, false
	}

	if p.pos < len(p.s) && (p.s[p.pos] == 'e' || p.s[p.pos] == 'E') {
		save := p.pos
		p.pos++
		if p.pos < len(p.s) && (p.s[p.pos] == '+' || p.s[p.pos] == '-') {
			p.pos++
		}
		expStart := p.pos
		for p.pos < len(p.s) && isDigit(p.s[p.pos]) {
			p.pos++
		}
		if p.pos == expStart {
			p.pos = save
		}
	}

	text := p.s[start:p.pos]
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.pos = start
		return Value{}, false
	}
	return Number(f), true
}

// parseSingleQuotedString implements: '\'' ( '\\\'' | '\\\\' |
// any-non-quote )* '\''.
func (p *exprParser) parseSingleQuotedString() (Value, bool) {
	start := p.pos
	if !p.consumeByte('\'') {
		return Value{}, false
	}

	var out []byte
	for {
		if p.pos >= len(p.s) {
			p.pos = start
			return Value{}, false
		}
		c := p.s[p.pos]
		if c == '\\' && p.pos+1 < len(p.s) && (p.s[p.pos+1] == '\'' || p.s[p.pos+1] == '\\') {
			out = append(out, p.s[p.pos+1])
			p.pos += 2
			continue
		}
		if c == '\'' {
			p.pos++
			return String(string(out)), true
		}
		out = append(out, c)
		p.pos++
	}
}
