package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "cover.png", want: "cover.png"},
		{in: "a/b\\c.png", want: "a-b-c.png"},
		{in: "what?.jpg", want: "what_.jpg"},
		{in: "  spaced.gif  ", want: "spaced.gif"},
		{in: "tab\there.png", want: "tabhere.png"},
		{in: "", want: "image.png"},
		{in: "..", want: "image.png"},
		{in: "   ", want: "image.png"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeFileName(tc.in, "image.png"), tc.in)
	}
}

func TestPrettyPrint(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", PrettyPrint(map[string]int{"a": 1}))
}
