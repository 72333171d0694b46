package keyboard

import "testing"

func TestInlineButtonsOnePerRow(t *testing.T) {
	markup := InlineButtons([]InlineBtn{
		{Text: "Shop", Unique: "shop_cats", Data: "manual"},
		{Text: "About", Unique: "about"},
		{Text: "Back", Unique: "main_menu"},
	})
	if got := len(markup.InlineKeyboard); got != 3 {
		t.Fatalf("rows = %d, want one per button", got)
	}
	for i, row := range markup.InlineKeyboard {
		if len(row) != 1 {
			t.Fatalf("row %d has %d buttons, want 1", i, len(row))
		}
	}
	first := markup.InlineKeyboard[0][0]
	if first.Text != "Shop" {
		t.Fatalf("first button text = %q", first.Text)
	}
	if first.Unique != "shop_cats" || first.Data != "manual" {
		t.Fatalf("first button routing = %q/%q", first.Unique, first.Data)
	}
}

func TestInlineButtonsRowsKeepsLayout(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{
			{Text: "Manual", Unique: "cat_channel", Data: "manual"},
			{Text: "Tokens", Unique: "cat_channel", Data: "token"},
		},
		[]InlineBtn{
			{Text: "Cancel", Unique: "admin_cancel"},
		},
	)
	if got := len(markup.InlineKeyboard); got != 2 {
		t.Fatalf("rows = %d, want 2", got)
	}
	if got := len(markup.InlineKeyboard[0]); got != 2 {
		t.Fatalf("first row has %d buttons, want the channel pair", got)
	}
	if got := len(markup.InlineKeyboard[1]); got != 1 {
		t.Fatalf("second row has %d buttons, want 1", got)
	}
}
