package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cpan-security/cpansentry/internal/index"
)

// ErrNoBaseline signals the first run: a current index was fetched and
// stored, but there is no previous generation to diff against yet.
var ErrNoBaseline = errors.New("no baseline snapshot yet, re-run after the next index update")

const (
	currentFile  = "02packages.current.txt"
	previousFile = "02packages.previous.txt"
	prevPrevFile = "02packages.prevprev.txt"
	permsFile    = "06perms.current.txt"
)

// Store manages the three on-disk index generations (current, previous,
// previous-previous) plus the permissions artifact under one directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// HasBaseline reports whether a current generation exists from a prior run.
func (s *Store) HasBaseline() bool {
	_, err := os.Stat(s.path(currentFile))
	return err == nil
}

// Rotate shifts generations: previous becomes previous-previous, current
// becomes previous. The oldest generation is discarded. Rotation moves the
// oldest slot first so an interruption never loses the newest data. Call
// only after a successful fetch, otherwise a failed run destroys the
// baseline.
func (s *Store) Rotate() error {
	if err := shift(s.path(previousFile), s.path(prevPrevFile)); err != nil {
		return err
	}
	return shift(s.path(currentFile), s.path(previousFile))
}

// shift renames src over dst, tolerating a missing src (empty slot).
func shift(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("rotating snapshot: %w", err)
	}
	return nil
}

// InstallCurrent moves a freshly fetched index file into the current slot.
func (s *Store) InstallCurrent(path string) error {
	if err := os.Rename(path, s.path(currentFile)); err != nil {
		return fmt.Errorf("installing current snapshot: %w", err)
	}
	return nil
}

// InstallPerms moves a freshly fetched permissions file into place.
func (s *Store) InstallPerms(path string) error {
	if err := os.Rename(path, s.path(permsFile)); err != nil {
		return fmt.Errorf("installing permissions file: %w", err)
	}
	return nil
}

// Current parses and returns the current generation.
func (s *Store) Current() (*index.Snapshot, error) {
	return s.load(currentFile)
}

// Previous parses and returns the previous generation. ErrNoBaseline is
// returned when the slot is empty.
func (s *Store) Previous() (*index.Snapshot, error) {
	if _, err := os.Stat(s.path(previousFile)); os.IsNotExist(err) {
		return nil, ErrNoBaseline
	}
	return s.load(previousFile)
}

// PermsPath returns the location of the stored permissions file.
func (s *Store) PermsPath() string {
	return s.path(permsFile)
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) load(name string) (*index.Snapshot, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	snap, err := index.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", name, err)
	}
	return snap, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}
