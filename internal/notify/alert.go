package notify

import (
	"fmt"
	"io"
	"sync"
)

// Alerter shows a blocking, always-available message.
type Alerter interface {
	Alert(msg string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(msg string)

func (f AlerterFunc) Alert(msg string) { f(msg) }

// WriterAlerter writes one line per alert.
type WriterAlerter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterAlerter creates an alerter writing to w.
func NewWriterAlerter(w io.Writer) *WriterAlerter {
	return &WriterAlerter{w: w}
}

func (a *WriterAlerter) Alert(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprintln(a.w, msg)
}

// MultiAlerter raises every alert on each of its alerters in order.
type MultiAlerter []Alerter

func (m MultiAlerter) Alert(msg string) {
	for _, a := range m {
		a.Alert(msg)
	}
}
