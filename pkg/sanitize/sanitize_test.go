package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text untouched", in: "Luna had a vet visit", want: "Luna had a vet visit"},
		{name: "tags stripped", in: "<b>bold</b> and <i>italic</i>", want: "bold and italic"},
		{name: "script removed with contents", in: "before<script>alert(1)</script>after", want: "before after"},
		{name: "style removed with contents", in: "a<style>p{color:red}</style>b", want: "a b"},
		{name: "entities decoded", in: "fish &amp; chips", want: "fish & chips"},
		{name: "whitespace collapsed", in: "a   \t  b", want: "a b"},
		{name: "newlines kept", in: "line one  \nline two", want: "line one\nline two"},
		{name: "empty", in: "", want: ""},
		{name: "attribute payload dropped", in: `<img src=x onerror="alert(1)">ok`, want: "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}
