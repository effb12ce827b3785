// pkg/format/params_test.go
package format

import (
	"errors"
	"strconv"
	"testing"
)

func TestParamsInt(t *testing.T) {
	p := Params{"n": "7", "bad": "seven", "empty": ""}

	if v, err := p.Int("n"); err != nil || v != 7 {
		t.Fatalf("Int(n) = %d, %v", v, err)
	}

	for _, name := range []string{"bad", "empty", "missing"} {
		_, err := p.Int(name)
		var pte *ParameterTypeError
		if !errors.As(err, &pte) {
			t.Fatalf("Int(%s) error = %v, want *ParameterTypeError", name, err)
		}
		if pte.Name != name || pte.Type != "int" {
			t.Fatalf("unexpected error fields: %+v", pte)
		}
	}

	_, err := p.Int("bad")
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Fatalf("ParameterTypeError must unwrap to strconv error, got %v", err)
	}
}

func TestParamsInt64AndBool(t *testing.T) {
	p := Params{"id": "1029384756473829100", "flag": "true", "nope": "maybe"}

	if v, err := p.Int64("id"); err != nil || v != 1029384756473829100 {
		t.Fatalf("Int64 = %d, %v", v, err)
	}
	if v, err := p.Bool("flag"); err != nil || !v {
		t.Fatalf("Bool = %v, %v", v, err)
	}
	if _, err := p.Bool("nope"); err == nil {
		t.Fatal("Bool(maybe) must fail")
	}
	if v, ok := p.Get("id"); !ok || v != "1029384756473829100" {
		t.Fatalf("Get = %q, %v", v, ok)
	}
}
