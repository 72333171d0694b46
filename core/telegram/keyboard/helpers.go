// Package keyboard builds the inline keyboards the storefront runs on:
// menu navigation, category/product listings, and flow-step buttons.
package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn is the registry-keyed inline button: Unique routes the callback,
// Data carries the entity id or step payload.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

// InlineButtons stacks every button on its own row, the layout used by all
// shop listings.
func InlineButtons(buttons []InlineBtn) *tele.ReplyMarkup {
	rows := make([][]InlineBtn, len(buttons))
	for i, b := range buttons {
		rows[i] = []InlineBtn{b}
	}
	return InlineButtonsRows(rows...)
}

// InlineButtonsRows builds an inline keyboard with explicit row layout, for
// markups that pair buttons (channel choice, keep/drop photo).
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	grid := make([][]tele.InlineButton, len(rows))
	for i, row := range rows {
		line := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			line[j] = *markup.Data(btn.Text, btn.Unique, btn.Data).Inline()
		}
		grid[i] = line
	}
	markup.InlineKeyboard = grid
	return markup
}
