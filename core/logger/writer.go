package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter hands lines to a background goroutine that writes them to a
// buffered sink. The buffer is flushed whenever the queue runs dry, so a
// burst of lines costs one syscall.
type asyncWriter struct {
	queue chan []byte
	flush chan chan error
	done  chan struct{}

	state  sync.RWMutex
	closed bool

	mu  sync.Mutex
	buf *bufio.Writer
	err error
}

func newAsyncWriter(w io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	aw := &asyncWriter{
		queue: make(chan []byte, 256),
		flush: make(chan chan error),
		done:  make(chan struct{}),
		buf:   bufio.NewWriterSize(w, bufSize),
	}
	go aw.loop()
	return aw
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				w.record(w.buf.Flush())
				return
			}
			w.record(w.write(line))
			if len(w.queue) == 0 {
				w.record(w.buf.Flush())
			}
		case ack := <-w.flush:
			ack <- w.drain()
		}
	}
}

func (w *asyncWriter) write(line []byte) error {
	_, err := w.buf.Write(line)
	return err
}

// drain writes everything already queued, then flushes.
func (w *asyncWriter) drain() error {
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				return w.buf.Flush()
			}
			w.record(w.write(line))
		default:
			return w.buf.Flush()
		}
	}
}

// Write queues a copy of p. It blocks when the queue is full rather than
// drop lines.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.lastErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.state.RLock()
	defer w.state.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush returns once every line queued before the call reached the sink.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flush <- ack:
		return errors.Join(<-ack, w.lastErr())
	case <-w.done:
		return w.lastErr()
	}
}

// Close drains the queue and stops the writer goroutine.
func (w *asyncWriter) Close() error {
	w.state.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.state.Unlock()
	<-w.done
	return w.lastErr()
}

func (w *asyncWriter) lastErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) record(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.mu.Unlock()
}
