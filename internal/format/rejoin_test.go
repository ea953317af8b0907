package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRejoin(t *testing.T) {
	cases := []struct {
		name string
		src  string
		out  string
		want string
	}{
		{name: "optional chain", src: "o?.a", out: "o ? .a\n", want: "o?.a\n"},
		{name: "conditional with decimal", src: "a?.5:1", out: "a ? .5 : 1\n", want: "a ? .5 : 1\n"},
		{name: "exponent", src: "2**3", out: "2 * * 3\n", want: "2 ** 3\n"},
		{name: "nullish assign", src: "x??=1", out: "x ? ? = 1\n", want: "x ??= 1\n"},
		{name: "spread", src: "{...b}", out: "{... b\n}\n", want: "{...b\n}\n"},
		{name: "private member", src: "this.#p", out: "this. # p\n", want: "this.#p\n"},
		{name: "string kept", src: "f('a  b')", out: "f('a b')\n", want: "f('a  b')\n"},
		{name: "template kept", src: "`x ${ y } z`", out: "`x ${y} z`\n", want: "`x ${ y } z`\n"},
		{name: "regex kept", src: "s.replace(/a b/g,'')", out: "s.replace(/a b/g, '')\n", want: "s.replace(/a b/g, '')\n"},
		{name: "quote inside string", src: `f("?.")`, out: `f("? .")` + "\n", want: `f("?.")` + "\n"},
		{name: "line comment keeps newline", src: "a // c\nb", out: "a // c b\n", want: "a // c\nb\n"},
		{name: "plain code untouched", src: "if(x){y()}", out: "if (x) {\n  y()\n}\n", want: "if (x) {\n  y()\n}\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := rejoin(tc.src, tc.out)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, compact(tc.src), compact(got))
		})
	}
}

func TestTokenSpansSkipsComments(t *testing.T) {
	spans := tokenSpans("/* a?.b */ x?.y")
	if assert.Len(t, spans, 1) {
		assert.Equal(t, span{start: 12, end: 14, joinBefore: true, joinAfter: true}, spans[0])
	}
}
