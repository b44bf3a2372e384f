package query

import "testing"

func TestValueEqual(t *testing.T) {
	if !Number(5).Equal(Number(5)) {
		t.Fatal("5 should equal 5")
	}
	if Number(5).Equal(Number(6)) {
		t.Fatal("5 should not equal 6")
	}
	if !String("a").Equal(String("a")) {
		t.Fatal(`"a" should equal "a"`)
	}
	if Number(5).Equal(String("5")) {
		t.Fatal("cross-kind values should never be equal")
	}
}

func TestValueOrdering(t *testing.T) {
	if !Number(1).Less(Number(2)) {
		t.Fatal("1 < 2")
	}
	if !Number(2).Greater(Number(1)) {
		t.Fatal("2 > 1")
	}
	if !String("a").Less(String("b")) {
		t.Fatal(`"a" < "b"`)
	}
	if Number(1).Less(String("b")) || String("b").Greater(Number(1)) {
		t.Fatal("cross-kind ordering must be false, not panic")
	}
}

func TestFromJSON(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		ok   bool
	}{
		{"float", float64(3.5), true},
		{"string", "x", true},
		{"bool", true, false},
		{"nil", nil, false},
		{"map", map[string]interface{}{}, false},
		{"slice", []interface{}{}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, ok := FromJSON(c.in)
			if ok != c.ok {
				t.Fatalf("FromJSON(%v) ok = %v, want %v", c.in, ok, c.ok)
			}
		})
	}
}

func TestValueStringFormat(t *testing.T) {
	if got := Number(5).String(); got != "5" {
		t.Fatalf("Number(5).String() = %q, want %q", got, "5")
	}
	if got := String("hi").String(); got != `"hi"` {
		t.Fatalf(`String("hi").String() = %q, want %q`, got, `"hi"`)
	}
}
