package util_test

import (
	"testing"

	"github.com/inkwellapp/inkwell-server/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple title", "Hello World", "hello-world"},
		{"already a slug", "hello-world", "hello-world"},
		{"uppercase", "HELLO WORLD", "hello-world"},
		{"diacritics", "Café au Lait", "cafe-au-lait"},
		{"punctuation stripped", "Go 1.26: What's New?", "go-126-whats-new"},
		{"underscores", "hello_world", "hello-world"},
		{"slashes", "either/or", "either-or"},
		{"collapsed whitespace", "  multi   word ", "multi-word"},
		{"leading and trailing dashes", "--leading--", "leading"},
		{"emoji dropped", "🔥 Hot Takes", "hot-takes"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, util.Slugify(tt.input))
		})
	}
}

func TestSlugify_Idempotent(t *testing.T) {
	// Slugifying a slug must not change it; this is what makes the
	// slug a pure function of the title.
	titles := []string{"Hello World", "Café au Lait", "a  b  c"}
	for _, title := range titles {
		once := util.Slugify(title)
		assert.Equal(t, once, util.Slugify(once))
	}
}
