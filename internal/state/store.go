package state

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/thoreinstein/flins/internal/errors"
	"github.com/thoreinstein/flins/internal/locator"
	"github.com/thoreinstein/flins/internal/logging"
	"github.com/thoreinstein/flins/internal/paths"
	"github.com/thoreinstein/flins/pkg/fileutil"
)

// filePerm is the permission used for lock files.
const filePerm = 0o644

// Policy captures how a lock file differs between the global and local
// stores.
type Policy struct {
	// Path returns the lock file location.
	Path func() (string, error)
	// Synthesize creates and persists an empty file when it is absent or
	// corrupt. Without it, absence is reported as "no store".
	Synthesize bool
	// DeleteEmpty removes the file when its last entry is removed.
	DeleteEmpty bool
	// Stamp sets the metadata field before every write.
	Stamp func(*File)
	// Valid reports whether a decoded file has its required fields.
	Valid func(*File) bool
}

// UpsertResult describes the effect of Upsert.
type UpsertResult struct {
	// Updated is true when an entry existed with a different branch.
	Updated        bool
	PreviousBranch string
}

// Store reads and writes one lock file. Nothing is cached: every call
// reads the file again. A Store assumes a single writer.
type Store struct {
	policy Policy
	scope  locator.Scope
	logger *slog.Logger
	now    func() time.Time
	write  func(path string, v any, perm os.FileMode) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for recoverable conditions such as a
// corrupt file being replaced.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a store governed by policy whose installations live in
// scope.
func NewStore(policy Policy, scope locator.Scope, opts ...Option) *Store {
	s := &Store{
		policy: policy,
		scope:  scope,
		logger: logging.NewDiscard(),
		now:    time.Now,
		write:  fileutil.AtomicWriteJSON,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the lock file location.
func (s *Store) Path() (string, error) {
	return s.policy.Path()
}

// Scope returns the installation scope the store tracks.
func (s *Store) Scope() locator.Scope {
	return s.scope
}

// Load reads the lock file. ok is false when there is no store: the file
// is absent or corrupt and the policy does not synthesize one. Errors are
// returned only for unexpected I/O failures.
func (s *Store) Load() (f *File, ok bool, err error) {
	path, err := s.Path()
	if err != nil {
		return nil, false, err
	}

	data, err := fileutil.ReadFileWithLimit(path)
	switch {
	case err == nil:
		f, err = s.decode(data)
		if err == nil {
			return f, true, nil
		}
		s.logger.Warn("lock file is corrupt", "path", path, "error", err)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, false, errors.Wrapf(err, "reading %s", path)
	}

	if !s.policy.Synthesize {
		return nil, false, nil
	}

	f = newFile()
	if err := s.Save(f); err != nil {
		return nil, false, err
	}
	return f, true, nil
}

func (s *Store) decode(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Skills == nil || (s.policy.Valid != nil && !s.policy.Valid(&f)) {
		return nil, errors.New("missing required fields")
	}
	return &f, nil
}

// Save stamps and writes f, creating the parent directory if needed.
func (s *Store) Save(f *File) error {
	path, err := s.Path()
	if err != nil {
		return err
	}
	if f.Skills == nil {
		f.Skills = make(map[string]Entry)
	}
	if s.policy.Stamp != nil {
		s.policy.Stamp(f)
	}
	if err := paths.EnsureDir(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return errors.Wrap(err, "creating state directory")
	}
	if err := s.write(path, f, filePerm); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

// Upsert stores entry under key, replacing any previous entry. The result
// reports a branch change of an existing entry. Keys that ParseKey could
// not read back are rejected with ErrMalformedKey before the file is
// touched.
func (s *Store) Upsert(key Key, entry Entry) (UpsertResult, error) {
	if err := key.Validate(); err != nil {
		return UpsertResult{}, err
	}
	f, ok, err := s.Load()
	if err != nil {
		return UpsertResult{}, err
	}
	if !ok {
		f = newFile()
	}

	var res UpsertResult
	if prev, exists := f.Get(key); exists && prev.Branch != entry.Branch {
		res = UpsertResult{Updated: true, PreviousBranch: prev.Branch}
	}

	f.Skills[key.String()] = entry
	if err := s.Save(f); err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

// Remove deletes key. Removing an absent key, or removing from a store
// that does not exist, is not an error.
func (s *Store) Remove(key Key) error {
	f, ok, err := s.Load()
	if err != nil || !ok {
		return err
	}
	delete(f.Skills, key.String())
	return s.persist(f)
}

// Get returns the entry for key.
func (s *Store) Get(key Key) (Entry, bool, error) {
	f, ok, err := s.Load()
	if err != nil || !ok {
		return Entry{}, false, err
	}
	e, found := f.Get(key)
	return e, found, nil
}

// All returns the whole file.
func (s *Store) All() (*File, bool, error) {
	return s.Load()
}

// UpdateCommit sets the commit of an existing entry. Absent keys are
// ignored, and so are entries without a branch: a commit is only recorded
// alongside the branch it was resolved from.
func (s *Store) UpdateCommit(key Key, commit string) error {
	f, ok, err := s.Load()
	if err != nil || !ok {
		return err
	}
	e, found := f.Get(key)
	if !found || e.Branch == "" {
		return nil
	}
	e.Commit = commit
	f.Skills[key.String()] = e
	return s.Save(f)
}

// persist writes f, or deletes the file when the policy asks for it and
// f has no entries left.
func (s *Store) persist(f *File) error {
	if s.policy.DeleteEmpty && f.Len() == 0 {
		s.deleteFile()
		return nil
	}
	return s.Save(f)
}

func (s *Store) deleteFile() {
	path, err := s.Path()
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("removing empty lock file", "path", path, "error", err)
	}
}
