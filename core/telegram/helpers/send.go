package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/storebot/core/logger"
	"github.com/m3rciful/storebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs the async sender behind the send helpers; the
// runtime sets it on start and clears it on shutdown.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// sendAsync queues the send on the dispatcher. Without a dispatcher, or
// when the queue cannot take the job, the send happens inline so the user
// still gets their reply.
func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	if err == nil {
		return nil
	}
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends plain text (no parse mode) to the current chat.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	var sendOpts *tele.SendOptions
	if len(opts) > 0 {
		sendOpts = opts[0]
	}
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if sendOpts != nil {
			return c.Send(text, sendOpts)
		}
		return c.Send(text)
	})
}

// SendMD sends Markdown text with an optional inline keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: firstMarkup(markup),
	})
}

// SendPhoto sends a photo card (product or section) with Markdown caption.
func SendPhoto(c tele.Context, photo *tele.Photo, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: firstMarkup(markup),
	}
	return sendAsync(c, "send.photo", "sendPhoto", func() error {
		return c.Send(photo, opts)
	})
}

// EditOrSendMD edits the current message in place, falling back to a fresh
// send; menu navigation uses this so screens replace each other. Edits stay
// synchronous: a queued edit could race the next button press.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, &tele.SendOptions{
		ParseMode:   tele.ModeMarkdown,
		ReplyMarkup: firstMarkup(markup),
	})
}

func firstMarkup(markup []*tele.ReplyMarkup) *tele.ReplyMarkup {
	if len(markup) > 0 {
		return markup[0]
	}
	return nil
}
