package receipt

import (
	"os"
	"sync"
)

// Sink accepts a complete pre-rendered receipt. The USB device handling
// behind a real sink (claim, endpoints, stall recovery) is its own
// problem; the renderer only ever hands over opaque byte buffers.
type Sink interface {
	Send(p []byte) error
}

// DeviceSink writes jobs straight to a printer character device, e.g.
// /dev/usb/lp0.
type DeviceSink struct {
	Path string
}

func (s DeviceSink) Send(p []byte) error {
	f, err := os.OpenFile(s.Path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(p); err != nil {
		return err
	}
	return f.Sync()
}

// FileSink appends jobs to a spool file. Default sink when no device is
// configured; also what the tests print into.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Send(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(p)
	return err
}
