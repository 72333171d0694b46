package handlers

import (
	"strings"

	"github.com/m3rciful/storebot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/storebot/core/telegram/helpers"
	"github.com/m3rciful/storebot/core/telegram/keyboard"
	"github.com/m3rciful/storebot/internal/models"

	tele "gopkg.in/telebot.v4"
)

// Edit-section flow: text → photo (skippable, or delete the existing one)
// → persist.

// StartEditSection begins editing the about/promotions block named by the
// callback payload.
func (h *Handlers) StartEditSection(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	key := callbacks.CallbackPayload(c)
	if key != models.SectionAbout && key != models.SectionPromotions {
		return c.Respond(&tele.CallbackResponse{Text: "Unknown section"})
	}

	userID := c.Sender().ID
	h.fsm.Start(userID, flowEditSection, stateSectionText)
	h.fsm.Put(userID, keySectionKey, key)
	return tghelpers.SendMD(c, "Send the new *text* for the _"+key+"_ section.", cancelMarkup())
}

// SectionText consumes the body and asks for an optional photo.
func (h *Handlers) SectionText(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())
	if text == "" || c.Message().Photo != nil {
		return tghelpers.SendMD(c, "Send the section body as *text*.", cancelMarkup())
	}

	h.fsm.Put(userID, keySectionText, text)
	h.fsm.SetState(userID, stateSectionPhoto)
	return tghelpers.SendMD(c, "Now send a *photo*, keep the current one, or drop it.", sectionPhotoMarkup())
}

// SectionPhoto replaces the section photo with the submitted one and persists.
func (h *Handlers) SectionPhoto(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	photo := c.Message().Photo
	if photo == nil {
		return tghelpers.SendMD(c, "Send a *photo*, keep the current one, or drop it.", sectionPhotoMarkup())
	}

	rc, err := c.Bot().File(&photo.File)
	if err != nil {
		return tghelpers.SendMD(c, "Could not read the photo, please try again.", sectionPhotoMarkup())
	}
	defer rc.Close()

	path, err := h.files.SaveSection(rc)
	if err != nil {
		return tghelpers.SendMD(c, "Could not save the photo, please try again.", sectionPhotoMarkup())
	}
	return h.persistSection(c, &path)
}

// keepSectionPhoto finishes the flow preserving whatever photo the section
// already has.
func (h *Handlers) keepSectionPhoto(c tele.Context) error {
	userID := c.Sender().ID
	if h.fsm.Flow(userID) != flowEditSection || h.fsm.State(userID) != stateSectionPhoto {
		return c.Respond(&tele.CallbackResponse{Text: "This step is stale"})
	}

	ctx := tghelpers.BuildContext(c)
	key, ok := h.fsm.String(userID, keySectionKey)
	if !ok {
		h.fsm.Clear(userID)
		return tghelpers.EditOrSendMD(c, "Something went wrong, please start over.", h.adminMenuMarkup())
	}
	current, err := h.sections.Section(ctx, key)
	if err != nil {
		h.fsm.Clear(userID)
		return tghelpers.EditOrSendMD(c, "Could not load the section, please try again later.", h.adminMenuMarkup())
	}
	return h.persistSection(c, current.PhotoPath)
}

// DeleteSectionPhoto finishes the flow dropping the stored photo.
func (h *Handlers) DeleteSectionPhoto(c tele.Context) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	if h.fsm.Flow(userID) != flowEditSection || h.fsm.State(userID) != stateSectionPhoto {
		return c.Respond(&tele.CallbackResponse{Text: "This step is stale"})
	}
	return h.persistSection(c, nil)
}

// persistSection is the terminal step of the edit-section flow.
func (h *Handlers) persistSection(c tele.Context, photoPath *string) error {
	if !h.requireAdmin(c) {
		return nil
	}
	userID := c.Sender().ID
	ctx := tghelpers.BuildContext(c)

	key, okKey := h.fsm.String(userID, keySectionKey)
	text, okText := h.fsm.String(userID, keySectionText)
	h.fsm.Clear(userID)
	if !okKey || !okText {
		return tghelpers.EditOrSendMD(c, "Something went wrong, please start over.", h.adminMenuMarkup())
	}

	if err := h.sections.Update(ctx, key, text, photoPath); err != nil {
		return tghelpers.EditOrSendMD(c, "Could not save the section, please try again later.", h.adminMenuMarkup())
	}
	return tghelpers.EditOrSendMD(c, "✅ Section _"+key+"_ updated.", h.adminMenuMarkup())
}

func sectionPhotoMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			{Text: "⏭ Keep current photo", Unique: cbAdminSkip, Data: skipSectionPhoto},
			{Text: "🗑 Drop photo", Unique: cbAdminDelPhoto},
		},
		[]keyboard.InlineBtn{
			{Text: "❌ Cancel", Unique: cbAdminCancel},
		},
	)
}
