// Package netutil classifies transport errors seen while talking to the
// Telegram API.
package netutil

import (
	"errors"
	"net"
	"net/url"
)

// ShouldRetry reports whether err looks like a transient transport failure
// (dial problems, timeouts) rather than a definitive API rejection. Invoice
// and notification sends re-run only when this returns true.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if transientNet(err) || transientOp(err) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			return ShouldRetry(urlErr.Err)
		}
	}
	return false
}

func transientNet(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary())
}

func transientOp(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	if opErr.Timeout() || opErr.Op == "dial" {
		return true
	}
	nested, ok := opErr.Err.(net.Error)
	return ok && (nested.Timeout() || nested.Temporary())
}
