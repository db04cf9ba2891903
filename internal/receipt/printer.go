package receipt

import (
	"errors"
	"sync"
)

var ErrNoSink = errors.New("no printer sink configured")

// Printer serializes jobs to the sink: at most one send in flight, later
// calls wait their turn.
type Printer struct {
	mu   sync.Mutex
	sink Sink
}

func NewPrinter(sink Sink) *Printer {
	return &Printer{sink: sink}
}

func (p *Printer) Print(job []byte) error {
	if p.sink == nil {
		return ErrNoSink
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sink.Send(job)
}
