package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const sendStatsKey = "send_stats"

// sendStats accumulates per-update reply counters for the handler summary
// log line: how many messages went out and whether any carried a keyboard.
type sendStats struct {
	messages int
	keyboard bool
}

// statsContext wraps tele.Context so every outbound reply updates the stats.
type statsContext struct {
	tele.Context
	stats *sendStats
}

func (s statsContext) counted(err error, opts []interface{}) error {
	if err == nil {
		s.stats.messages++
		if carriesKeyboard(opts) {
			s.stats.keyboard = true
		}
	}
	return err
}

func carriesKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (s statsContext) Send(what interface{}, opts ...interface{}) error {
	return s.counted(s.Context.Send(what, opts...), opts)
}

func (s statsContext) Reply(what interface{}, opts ...interface{}) error {
	return s.counted(s.Context.Reply(what, opts...), opts)
}

func (s statsContext) Edit(what interface{}, opts ...interface{}) error {
	return s.counted(s.Context.Edit(what, opts...), opts)
}

func (s statsContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return s.counted(s.Context.EditOrSend(what, opts...), opts)
}

func (s statsContext) EditOrReply(what interface{}, opts ...interface{}) error {
	return s.counted(s.Context.EditOrReply(what, opts...), opts)
}

// MessageMetricsMiddleware instruments the context so the summary logger can
// report messages sent and keyboard usage per update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		stats := &sendStats{}
		c.Set(sendStatsKey, stats)
		return next(statsContext{Context: c, stats: stats})
	}
}

// GetCounters reads the accumulated reply counters for the current update.
func GetCounters(c tele.Context) (int, bool) {
	if stats, ok := c.Get(sendStatsKey).(*sendStats); ok && stats != nil {
		return stats.messages, stats.keyboard
	}
	return 0, false
}
