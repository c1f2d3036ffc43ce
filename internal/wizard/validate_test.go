package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidPrice(t *testing.T) {
	for _, s := range []string{"1.50", "0", "1234567890.12", "12.", ".5", ""} {
		assert.True(t, ValidPrice(s), s)
	}
	for _, s := range []string{"1.555", "abc", "12345678901", "-1", "1,50", " 1.50"} {
		assert.False(t, ValidPrice(s), s)
	}
}

func TestSheetIDFromLink(t *testing.T) {
	id, ok := SheetIDFromLink("https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0")
	assert.True(t, ok)
	assert.Equal(t, "1AbC-d_9", id)

	_, ok = SheetIDFromLink("https://example.com/sheet")
	assert.False(t, ok)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "12.50", formatPrice("12.5"))
	assert.Equal(t, "3.00", formatPrice("3"))
	assert.Equal(t, "0.00", formatPrice(""))
}
