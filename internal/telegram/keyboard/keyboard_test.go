package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/tracker/internal/wizard"
)

func TestOptionsOneButtonPerRow(t *testing.T) {
	markup := Options(wizard.StatePickCategory, []string{"Food", "Shopping", wizard.BackLabel})

	require.Len(t, markup.InlineKeyboard, 3)
	for i, row := range markup.InlineKeyboard {
		require.Len(t, row, 1)
		assert.Equal(t, OptionUnique, row[0].Unique)
		st, idx, err := ParseChoice(row[0].Data)
		require.NoError(t, err)
		assert.Equal(t, wizard.StatePickCategory, st)
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, wizard.BackLabel, markup.InlineKeyboard[2][0].Text)
}

func TestParseChoice(t *testing.T) {
	st, idx, err := ParseChoice("\fopt|pick_payment|3")
	require.NoError(t, err)
	assert.Equal(t, wizard.StatePickPayment, st)
	assert.Equal(t, 3, idx)

	for _, bad := range []string{"", "pick_payment", "pick_payment|x", "|1", "pick_payment|-1"} {
		_, _, err := ParseChoice(bad)
		assert.Error(t, err, bad)
	}
}
