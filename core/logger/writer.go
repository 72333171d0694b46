package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// writerMsg is either a line to write (data set) or a flush request (ack set).
type writerMsg struct {
	data []byte
	ack  chan error
}

// asyncWriter decouples log emission from sink IO: lines go through a single
// goroutine that fans them out to every buffered sink.
type asyncWriter struct {
	inbox chan writerMsg

	closeOnce sync.Once
	drained   chan struct{}

	mu      sync.Mutex
	sinks   []*bufio.Writer
	firstEr error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		inbox:   make(chan writerMsg, 256),
		drained: make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.drained)
	for msg := range w.inbox {
		if msg.ack != nil {
			msg.ack <- w.flushSinks()
			continue
		}
		if len(msg.data) == 0 {
			continue
		}
		if err := w.fanOut(msg.data); err != nil {
			w.recordErr(err)
		}
	}
	_ = w.flushSinks()
}

// Write enqueues one rendered line. When the inbox is saturated it blocks
// instead of dropping, so bursts never lose records.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)
	w.inbox <- writerMsg{data: line}
	return nil
}

// Flush blocks until everything queued so far has reached the sinks.
func (w *asyncWriter) Flush() error {
	if err := w.err(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	w.inbox <- writerMsg{ack: ack}
	return <-ack
}

// Close drains the inbox and returns the first write error seen.
func (w *asyncWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.inbox)
	})
	<-w.drained
	return w.err()
}

func (w *asyncWriter) fanOut(p []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			return err
		}
		if err := sink.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flushSinks() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.firstEr
}

func (w *asyncWriter) recordErr(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.firstEr == nil {
		w.firstEr = err
	}
}
