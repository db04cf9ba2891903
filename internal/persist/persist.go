package persist

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

const stateFile = "flowprint.state.json"

// Store holds the single persisted state blob. It deals in raw bytes; the
// codec package owns the document format.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{path: filepath.Join(dataDir, stateFile)}, nil
}

func (s *Store) Path() string { return s.path }

// Load returns the blob, or found=false when nothing was saved yet.
func (s *Store) Load() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

// Save writes the blob through a temp file so a crash mid-write never
// leaves a truncated state file.
func (s *Store) Save(b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Autosaver writes state off the mutation path. Queue never blocks: a
// newer snapshot replaces any pending one, so the writer always persists
// the latest state it has seen. Save failures are logged and never touch
// in-memory state.
type Autosaver struct {
	store   *Store
	logger  *log.Logger
	pending chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewAutosaver(store *Store, logger *log.Logger) *Autosaver {
	if logger == nil {
		logger = log.Default()
	}
	return &Autosaver{
		store:   store,
		logger:  logger,
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
	}
}

func (a *Autosaver) Start() {
	a.wg.Add(1)
	go a.run()
}

// Queue hands the writer the latest snapshot, dropping any stale pending
// one.
func (a *Autosaver) Queue(b []byte) {
	for {
		select {
		case a.pending <- b:
			return
		default:
			select {
			case <-a.pending:
			default:
			}
		}
	}
}

func (a *Autosaver) run() {
	defer a.wg.Done()
	for {
		select {
		case b := <-a.pending:
			if err := a.store.Save(b); err != nil {
				a.logger.Printf("state save failed: %v", err)
			}
		case <-a.done:
			select {
			case b := <-a.pending:
				if err := a.store.Save(b); err != nil {
					a.logger.Printf("state save failed: %v", err)
				}
			default:
			}
			return
		}
	}
}

// Close flushes any pending snapshot and stops the writer.
func (a *Autosaver) Close() {
	close(a.done)
	a.wg.Wait()
}
