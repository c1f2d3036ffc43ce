// Package keyboard renders wizard options as inline keyboards and decodes presses.
package keyboard

import (
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tracker/internal/wizard"
)

// OptionUnique is the callback endpoint shared by every option button.
const OptionUnique = "opt"

// Endpoint is the handler endpoint for option presses.
var Endpoint = &tele.Btn{Unique: OptionUnique}

// Options builds an inline keyboard with one button per row. Button i carries
// "<state>|<i>" so a press can be checked against the state it was rendered for.
func Options(st wizard.State, labels []string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(labels))
	for i, label := range labels {
		rows = append(rows, markup.Row(markup.Data(label, OptionUnique, string(st), strconv.Itoa(i))))
	}
	markup.Inline(rows...)
	return markup
}

// ParseChoice decodes the payload of an option press. Raw callback data with
// the "\f<unique>|" prefix is accepted as well.
func ParseChoice(data string) (wizard.State, int, error) {
	data = strings.TrimPrefix(data, "\f"+OptionUnique+"|")
	st, idx, ok := strings.Cut(data, "|")
	if !ok || st == "" {
		return "", 0, fmt.Errorf("keyboard: malformed option payload %q", data)
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return "", 0, fmt.Errorf("keyboard: malformed option index %q", idx)
	}
	return wizard.State(st), i, nil
}
