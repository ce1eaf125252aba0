package newick

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func sample(s string) io.Reader {
	return bytes.NewReader([]byte(s))
}

func TestLexer(t *testing.T) {
	tests := []string{
		"(A,B,(C,D)E)F;",
		"(,,(,));",
		"(:0.1,:0.2,(:0.3,:0.4):0.5);",
		"(A:0.1,B:0.2,(C:0.3,D:0.4):0.5);",
		"((d1qbea_:0.597492,d1dwna_:0.632208):0.162939," +
			"(d1gav0_:0.526213,(d1unaa_:0.457107,d2iznb1:0.523093):0.043387);",
		"(B)A;",
		"((X,Y)C)ROOT;",
		"('a b':1e-05,'it''s':2.5E+3)'root';",
		"(A:-1,B:1)\n;",
	}
	for _, test := range tests {
		lx := lex(sample(test))
		for {
			item := lx.nextItem()
			if item.typ == itemEOF {
				break
			} else if item.typ == itemError {
				t.Fatalf("%s: %s", test, item.val)
			}
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input, msg string
	}{
		{"(A B,C);", "Found ' ' in an unquoted label"},
		{"(A\nB,C);", "Found '\\n' in an unquoted label"},
		{"(A:1x,B);", "but got 'x' instead"},
		{"(A:1.5x,B);", "but got 'x' instead"},
		{"(A:1e+x,B);", "exponent, but got 'x' instead"},
		{"('abc,B);", "Unexpected EOF in a quoted label."},
		{"('a'b,C);", "quoted label, but got 'b' instead"},
	}
	for _, test := range tests {
		lx := lex(sample(test.input))
		var msg string
		for {
			item := lx.nextItem()
			if item.typ == itemError {
				msg = item.val
				break
			}
			if item.typ == itemEOF {
				break
			}
		}
		if !strings.Contains(msg, test.msg) {
			t.Fatalf("Expected an error containing %q for %q, got %q.",
				test.msg, test.input, msg)
		}
	}
}

func TestLexerAfterEOF(t *testing.T) {
	lx := lex(sample("A;"))
	for i := 0; i < 5; i++ {
		lx.nextItem()
	}
	if item := lx.nextItem(); item.typ != itemEOF {
		t.Fatalf("Expected EOF after the input is exhausted, got %s", item)
	}
}
