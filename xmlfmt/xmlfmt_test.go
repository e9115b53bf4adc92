package xmlfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "inline text child",
			src:  `<root><foo>this might be a string</foo><bar attr="x">ok</bar></root>`,
			want: "<root>\n  <foo>this might be a string</foo>\n  <bar attr=\"x\">ok</bar>\n</root>",
		},
		{
			name: "nested",
			src:  `<root><foo><b>bold</b></foo></root>`,
			want: "<root>\n  <foo>\n    <b>bold</b>\n  </foo>\n</root>",
		},
		{
			name: "trims inline text",
			src:  "<root><foo>  hi  </foo></root>",
			want: "<root>\n  <foo>hi</foo>\n</root>",
		},
		{
			name: "attributes kept verbatim",
			src:  `<root><item id="42" class='a b'>value</item></root>`,
			want: "<root>\n  <item id=\"42\" class='a b'>value</item>\n</root>",
		},
		{
			name: "irregular attribute spacing",
			src:  `<root><a   x = "1"   y='2'    >t</a></root>`,
			want: "<root>\n  <a   x = \"1\"   y='2'    >t</a>\n</root>",
		},
		{
			name: "self closing",
			src:  `<root><img src="x" alt='hello &quot;world&quot;' width="10"/></root>`,
			want: "<root>\n  <img src=\"x\" alt='hello &quot;world&quot;' width=\"10\"/>\n</root>",
		},
		{
			name: "template in attribute",
			src:  `<root><x attr=${[ compute(1, "two") ]}/></root>`,
			want: "<root>\n  <x attr=${[ compute(1, \"two\") ]}/>\n</root>",
		},
		{
			name: "namespaces",
			src:  `<root><ns:el xml:lang="en">ok</ns:el></root>`,
			want: "<root>\n  <ns:el xml:lang=\"en\">ok</ns:el>\n</root>",
		},
		{
			name: "quote inside other quote",
			src:  `<root><a title='He said "hi" >'>hello</a></root>`,
			want: "<root>\n  <a title='He said \"hi\" >'>hello</a>\n</root>",
		},
		{
			name: "template between elements",
			src:  `<root>${[ body ]}<x/></root>`,
			want: "<root>\n  ${[ body ]}\n  <x/>\n</root>",
		},
		{
			name: "declarations and comments",
			src:  `<?xml version="1.0"?><!DOCTYPE r><r><!-- a  b --><![CDATA[ <x> ]]></r>`,
			want: "<?xml version=\"1.0\"?>\n<!DOCTYPE r>\n<r>\n  <!-- a  b -->\n  <![CDATA[ <x> ]]>\n</r>",
		},
		{
			name: "multiline text not inlined",
			src:  "<r><p>one\ntwo</p></r>",
			want: "<r>\n  <p>\n    one\ntwo\n  </p>\n</r>",
		},
		{
			name: "mismatched names not inlined",
			src:  "<a>t</b>",
			want: "<a>\n  t\n</b>",
		},
		{
			name: "unbalanced close does not go negative",
			src:  "</a></b><c/>",
			want: "</a>\n</b>\n<c/>",
		},
		{
			name: "empty",
			src:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.src, DefaultIndent))
		})
	}
}

func TestFormatLongTemplateStaysOnOneLine(t *testing.T) {
	tag := `${[ secure(value: "` + strings.Repeat("x", 500) + `") ]}`
	src := "<a><b>" + tag + "</b></a>"

	out := Format(src, "\t")

	assert.Contains(t, out, "\t\t"+tag+"\n")
}

func TestFormatIdempotent(t *testing.T) {
	src := `<root><foo><b>bold</b></foo><x attr="${[ a ]}">t</x></root>`

	once := Format(src, DefaultIndent)

	assert.Equal(t, once, Format(once, DefaultIndent))
}

func TestTokenize(t *testing.T) {
	toks := Tokenize(`<a x="1">${[ v ]}</a><b/>`)

	kinds := make([]Kind, len(toks))
	for i, tok := range toks {
		kinds[i] = tok.Kind
	}

	assert.Equal(t,
		[]Kind{KindOpen, KindTemplate, KindClose, KindSelfClose}, kinds)
	assert.Equal(t, "a", toks[0].Name)
	assert.Equal(t, "a", toks[2].Name)
	assert.Equal(t, "${[ v ]}", toks[1].Raw)
}

func TestTokenizeUnterminated(t *testing.T) {
	toks := Tokenize("<a>${[ open")

	require.Len(t, toks, 2)
	assert.Equal(t, KindTemplate, toks[1].Kind)
	assert.Equal(t, "${[ open", toks[1].Raw)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"plain", `<a><b>1</b></a>`, nil},
		{"template text", `<a>${[ v ]}</a>`, nil},
		{"template unquoted attribute", `<a x=${[ v ]}/>`, nil},
		{"template quoted attribute", `<a x="${[ v ]}"/>`, nil},
		{"mismatched", `<a></b>`, ErrMalformed},
		{"garbage", `<a <<`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.src)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNoRoot(t *testing.T) {
	assert.Error(t, Validate("just text"))
}
