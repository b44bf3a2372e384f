package query

import "testing"

func FuzzParseExprs(f *testing.F) {
	seeds := []string{
		"msg",
		"*",
		"count > 2",
		"count == 1",
		"name == 'bob'",
		"msg, count == 1",
		"tag == 5",
		"name in 'bob'",
		"name fzf 'bo'",
		`name == 'it\'s \\here'`,
		"",
		"   ",
		"count >",
		"> 5",
		"msg,",
		"msg,,count",
		"'unterminated",
		"9bad.path",
		".leading.dot",
		"a.",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		// Should never panic, regardless of input.
		exprs, ok := ParseExprs(input)
		if ok && exprs == nil {
			t.Errorf("ParseExprs(%q) returned ok=true with a nil expr list", input)
		}
	})
}
