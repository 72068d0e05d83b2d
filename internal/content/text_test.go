package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Brown the  beef.\n", want: "Brown the beef."},
		{name: "markup", input: "<p>Brown the <b>beef</b>.</p><p>Add onions.</p>", want: "Brown the beef. Add onions."},
		{name: "line breaks", input: "Stir<br>Serve", want: "Stir Serve"},
		{name: "entities", input: "Salt &amp; pepper", want: "Salt & pepper"},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlainText(tt.input))
		})
	}
}
