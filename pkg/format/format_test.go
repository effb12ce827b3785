// pkg/format/format_test.go
package format

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
)

func TestCompileMalformed(t *testing.T) {
	cases := []struct {
		name   string
		format string
	}{
		{"unterminated", "hello-button:{random_number"},
		{"nested", "a{b{c}}"},
		{"duplicate", "{x}-{x}"},
		{"empty name", "a{}"},
		{"stray close", "a}b"},
		{"adjacent", "{a}{b}"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compile(tc.format)
			var mpe *MalformedPatternError
			if !errors.As(err, &mpe) {
				t.Fatalf("Compile(%q) error = %v, want *MalformedPatternError", tc.format, err)
			}
			if mpe.Format != tc.format {
				t.Fatalf("error carries format %q, want %q", mpe.Format, tc.format)
			}
		})
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustCompile must panic on a malformed pattern")
		}
	}()
	MustCompile("{broken")
}

func TestMatchLiteralIsExactEquality(t *testing.T) {
	p := MustCompile("show-button")

	cases := map[string]bool{
		"show-button":  true,
		"Show-Button":  false,
		"show-button ": false,
		"show-butto":   false,
		"":             false,
		"xshow-button": false,
	}
	for candidate, want := range cases {
		params, ok := p.Match(candidate)
		if ok != want {
			t.Errorf("Match(%q) = %v, want %v", candidate, ok, want)
		}
		if ok && len(params) != 0 {
			t.Errorf("literal match must return empty params, got %v", params)
		}
	}
}

func TestMatchExtractsPlaceholders(t *testing.T) {
	p := MustCompile("hello-button:{random_number}")

	cases := []struct {
		candidate string
		want      Params
		ok        bool
	}{
		{"hello-button:7", Params{"random_number": "7"}, true},
		{"hello-button:", Params{"random_number": ""}, true},
		{"hello-button", nil, false},
		{"hello-button;7", nil, false},
		{"HELLO-button:7", nil, false},
	}

	for _, tc := range cases {
		got, ok := p.Match(tc.candidate)
		if ok != tc.ok {
			t.Fatalf("Match(%q) ok = %v, want %v", tc.candidate, ok, tc.ok)
		}
		if ok && !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Match(%q) = %v, want %v", tc.candidate, got, tc.want)
		}
	}
}

func TestMatchGreedyToNextLiteral(t *testing.T) {
	cases := []struct {
		format    string
		candidate string
		want      Params
		ok        bool
	}{
		{"a{x}", "a1b", Params{"x": "1b"}, true},
		{"a{x}b", "a1b", Params{"x": "1"}, true},
		{"a{x}b", "ab", Params{"x": ""}, true},
		{"a{x}b", "a1bb", nil, false},
		{"{a}-{b}", "x-y-z", Params{"a": "x", "b": "y-z"}, true},
		{"vote:{poll}:{option}", "vote:42:yes", Params{"poll": "42", "option": "yes"}, true},
		{"vote:{poll}:{option}", "vote:42", nil, false},
		{"{x}:end", ":end", Params{"x": ""}, true},
	}

	for _, tc := range cases {
		got, ok := MustCompile(tc.format).Match(tc.candidate)
		if ok != tc.ok {
			t.Fatalf("%q.Match(%q) ok = %v, want %v", tc.format, tc.candidate, ok, tc.ok)
		}
		if ok && !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%q.Match(%q) = %v, want %v", tc.format, tc.candidate, got, tc.want)
		}
	}
}

func TestEmptyCandidateMatchesOnlyEmptyPattern(t *testing.T) {
	if _, ok := MustCompile("").Match(""); !ok {
		t.Fatal("empty pattern must match empty candidate")
	}
	for _, f := range []string{"{x}", "a", "a{x}"} {
		if _, ok := MustCompile(f).Match(""); ok {
			t.Fatalf("%q must not match empty candidate", f)
		}
	}
	if _, ok := MustCompile("").Match("a"); ok {
		t.Fatal("empty pattern must not match non-empty candidate")
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	const f = "item:{id}/page:{page}"
	a, b := MustCompile(f), MustCompile(f)

	inputs := []string{"item:1/page:2", "item:/page:", "item:1", "", "item:a/b/page:c/page:d"}
	for _, in := range inputs {
		pa, oka := a.Match(in)
		pb, okb := b.Match(in)
		if oka != okb || !reflect.DeepEqual(pa, pb) {
			t.Fatalf("patterns compiled from the same format disagree on %q: %v/%v vs %v/%v", in, pa, oka, pb, okb)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	p := MustCompile("vote:{poll}:{option}")
	if got := p.Placeholders(); !reflect.DeepEqual(got, []string{"poll", "option"}) {
		t.Fatalf("Placeholders() = %v", got)
	}
	if p.IsLiteral() {
		t.Fatal("pattern with placeholders reported as literal")
	}
	if p.String() != "vote:{poll}:{option}" {
		t.Fatalf("String() = %q", p.String())
	}
}

func TestBuildRoundTrip(t *testing.T) {
	p := MustCompile("hello-button:{random_number}")

	for n := 0; n <= 10; n++ {
		id, err := p.Build(Params{"random_number": strconv.Itoa(n)})
		if err != nil {
			t.Fatalf("Build: %v", err)
		}
		got, ok := p.Match(id)
		if !ok {
			t.Fatalf("built id %q does not match its own pattern", id)
		}
		if v, _ := got.Int("random_number"); v != n {
			t.Fatalf("round trip lost value: got %d want %d", v, n)
		}
	}
}

func TestBuildRejectsUnparsableValues(t *testing.T) {
	p := MustCompile("vote:{poll}:{option}")

	if _, err := p.Build(Params{"poll": "1"}); err == nil {
		t.Fatal("missing value must fail")
	}
	if _, err := p.Build(Params{"poll": "1:2", "option": "x"}); err == nil {
		t.Fatal("value containing the following literal must fail")
	}
	// Последний плейсхолдер может содержать что угодно
	if id, err := p.Build(Params{"poll": "1", "option": "a:b"}); err != nil || id != "vote:1:a:b" {
		t.Fatalf("Build = %q, %v", id, err)
	}
}

func TestSample(t *testing.T) {
	if got := MustCompile("a{x}b{y}").Sample("0"); got != "a0b0" {
		t.Fatalf("Sample = %q", got)
	}
}
