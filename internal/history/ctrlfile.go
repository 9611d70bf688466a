package history

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"
)

// genesis is the earliest hour the exchange carries history for; it is the
// control file's bit zero.
var genesis = time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)

// CtrlFile records which hourly windows of one symbol's history have been
// fetched, one bit per hour since genesis. The hour still in progress is
// never recorded, so the pump fetches it again on every pass until it
// closes.
type CtrlFile struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	bits []byte
}

// OpenCtrlFile loads the bitvector at path, treating a missing file as all
// unfetched.
func OpenCtrlFile(path string) (*CtrlFile, error) {
	bits, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("history: read ctrl file %s: %w", path, err)
	}
	return &CtrlFile{path: path, now: time.Now, bits: bits}, nil
}

// NewMemCtrlFile is a control file that never touches disk. Dry runs use it
// to walk the windows without recording anything.
func NewMemCtrlFile() *CtrlFile {
	return &CtrlFile{now: time.Now}
}

func hourIndex(t time.Time) int {
	if t.Before(genesis) {
		t = genesis
	}
	return int(t.Sub(genesis) / time.Hour)
}

func hourStart(i int) time.Time {
	return genesis.Add(time.Duration(i) * time.Hour)
}

func (c *CtrlFile) get(i int) bool {
	b, bit := i/8, uint(i%8)
	return b < len(c.bits) && c.bits[b]&(1<<bit) != 0
}

func (c *CtrlFile) set(i int) {
	b, bit := i/8, uint(i%8)
	for b >= len(c.bits) {
		c.bits = append(c.bits, 0)
	}
	c.bits[b] |= 1 << bit
}

// Fetched reports whether the hourly window containing t is already done.
// A window that has not closed yet is never done.
func (c *CtrlFile) Fetched(t time.Time) bool {
	if hourStart(hourIndex(t)).Add(time.Hour).After(c.now()) {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(hourIndex(t))
}

// MarkFetched records the hourly window containing t as done and persists
// the bitvector. Windows that have not closed yet are skipped.
func (c *CtrlFile) MarkFetched(t time.Time) error {
	if hourStart(hourIndex(t)).Add(time.Hour).After(c.now()) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(hourIndex(t))
	if c.path == "" {
		return nil
	}
	if err := os.WriteFile(c.path, c.bits, 0o644); err != nil {
		return fmt.Errorf("history: write ctrl file %s: %w", c.path, err)
	}
	return nil
}

// NextUnfetched returns the start of the first hourly window at or after
// from that still needs fetching. Because open windows are never marked,
// the result never runs past the hour in progress.
func (c *CtrlFile) NextUnfetched(from time.Time) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := hourIndex(from)
	for c.get(i) {
		i++
	}
	return hourStart(i)
}
