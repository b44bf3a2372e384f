package query

// Op enumerates the filter atom operators. In and Fzf are reserved:
// they parse successfully but always evaluate to false.
type Op uint8

const (
	OpNone Op = iota
	OpLt
	OpEq
	OpGt
	OpIn
	OpFzf
)

// String renders the operator the way the parser accepts it, so
// printing and re-parsing an Expr round-trips.
func (o Op) String() string {
	switch o {
	case OpLt:
		return "<"
	case OpEq:
		return "=="
	case OpGt:
		return ">"
	case OpIn:
		return "in"
	case OpFzf:
		return "fzf"
	default:
		return ""
	}
}

// Expr is a single filter atom: (path, op?, rhs?). Op is present iff rhs
// is present; HasOp distinguishes a presence-only atom from one with an
// operator.
type Expr struct {
	Path  Path
	Op    Op
	RHS   Value
	HasOp bool
}

// NewPresenceExpr builds an atom with no operator ("field must exist").
func NewPresenceExpr(p Path) Expr {
	return Expr{Path: p}
}

// NewExpr builds an atom with an operator and right-hand side.
func NewExpr(p Path, op Op, rhs Value) Expr {
	return Expr{Path: p, Op: op, RHS: rhs, HasOp: true}
}

// Matches reports whether rec satisfies the filter atom.
func (e Expr) Matches(rec *Record) bool {
	if e.Path.IsWildcard() {
		return true
	}
	leaf, ok := rec.Leaf(e.Path)
	if !ok {
		return false
	}
	if !e.HasOp {
		return true
	}
	val, ok := FromJSON(leaf)
	if !ok {
		// leaf resolved to an object/array/null/bool: not a leaf Value.
		return false
	}
	switch e.Op {
	case OpEq:
		return val.Equal(e.RHS)
	case OpLt:
		return val.Less(e.RHS)
	case OpGt:
		return val.Greater(e.RHS)
	case OpIn, OpFzf:
		// Reserved operators: parse-accepted, evaluate-as-false.
		return false
	default:
		return false
	}
}

// String renders the Expr in the parser's textual grammar, e.g.
// "count > 5" or "msg" (presence-only) or "*". Re-parsing this text
// yields an equal Expr.
func (e Expr) String() string {
	s := e.Path.String()
	if !e.HasOp {
		return s
	}
	return s + " " + e.Op.String() + " " + e.RHS.grammarString()
}

// grammarString renders a Value the way the filter grammar's rhs
// production expects it: numbers as plain decimals, strings
// single-quoted with '\'' and '\\' escaped. This is distinct from
// Value.String, which renders the JSON-quoted form used for result-line
// output.
func (v Value) grammarString() string {
	if v.kind == KindNumber {
		return formatNumber(v.num)
	}
	var b []byte
	b = append(b, '\'')
	for i := 0; i < len(v.str); i++ {
		c := v.str[i]
		if c == '\'' || c == '\\' {
			b = append(b, '\\')
		}
		b = append(b, c)
	}
	b = append(b, '\'')
	return string(b)
}

// Query is a parsed filter submitted by the UI. Seq is a monotone
// sequence number assigned by the UI; later queries supersede earlier
// ones with smaller Seq.
type Query struct {
	Seq        int64
	Str        string
	Exprs      []Expr
	MaxMatches int
}
