package profilestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/werf/lockgate"
	"github.com/werf/lockgate/pkg/file_locker"
	ini "gopkg.in/ini.v1"
)

var (
	ErrCredFileRead  = errors.New("unable to read credential file")
	ErrCredFileWrite = errors.New("unable to write credential file")
	// corrupt entries are a read class failure - a stored profile that
	// cannot be interpreted must not be silently treated as expired
	ErrCredFileCorrupt = fmt.Errorf("corrupt credential entry: %w", ErrCredFileRead)
	ErrCannotLock      = errors.New("unable to acquire credential file lock")
)

const lockDirName = "aws-saml-creds-lock"

// Profile is a single named credential section in the shared credentials
// file. The key names match what other AWS tooling reads.
type Profile struct {
	AWSAccessKey    string `ini:"aws_access_key_id"`
	AWSSecretKey    string `ini:"aws_secret_access_key"`
	AWSSessionToken string `ini:"aws_session_token"`
	Expiration      string `ini:"aws_expiration"`
}

// ExpiresAt parses the stored RFC3339 expiration.
func (p Profile) ExpiresAt() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, p.Expiration)
	if err != nil {
		return time.Time{}, fmt.Errorf("expiration %q: %s, %w", p.Expiration, err, ErrCredFileCorrupt)
	}
	return t, nil
}

func (p Profile) validate() error {
	if p.AWSAccessKey == "" || p.AWSSecretKey == "" {
		return fmt.Errorf("profile missing key material, %w", ErrCredFileCorrupt)
	}
	return nil
}

// Store reads and writes named credential profiles in a single ini file.
//
// The file is shared with other processes, so every save is a
// load-merge-write under an advisory lock, finished with a temp file
// rename so concurrent readers never see a partial write.
type Store struct {
	path         string
	locker       lockgate.Locker
	lockResource string
}

func New(path string) (*Store, error) {
	lockDir := filepath.Join(os.TempDir(), lockDirName)
	locker, err := file_locker.NewFileLocker(lockDir)
	if err != nil {
		return nil, fmt.Errorf("cannot setup lock dir: %s, %w", lockDir, ErrCannotLock)
	}
	return &Store{
		path:         path,
		locker:       locker,
		lockResource: lockResourceName(path),
	}, nil
}

func (s *Store) WithLocker(locker lockgate.Locker) *Store {
	s.locker = locker
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Profile returns the named profile, with the bool reporting presence.
// A missing file or missing section is a modeled outcome, not an error.
func (s *Store) Profile(name string) (*Profile, bool, error) {
	cfg, exists, err := s.loadFile()
	if err != nil || !exists {
		return nil, false, err
	}
	if !cfg.HasSection(name) {
		return nil, false, nil
	}
	p := &Profile{}
	if err := cfg.Section(name).MapTo(p); err != nil {
		return nil, false, fmt.Errorf("fail to map section %s: %s, %w", name, err, ErrCredFileRead)
	}
	if err := p.validate(); err != nil {
		return nil, false, fmt.Errorf("section %s: %w", name, err)
	}
	return p, true, nil
}

// Profiles returns all stored profiles keyed by section name.
func (s *Store) Profiles() (map[string]Profile, bool, error) {
	cfg, exists, err := s.loadFile()
	if err != nil || !exists {
		return nil, false, err
	}
	all := map[string]Profile{}
	for _, section := range cfg.Sections() {
		if section.Name() == ini.DefaultSection && len(section.Keys()) == 0 {
			continue
		}
		p := Profile{}
		if err := section.MapTo(&p); err != nil {
			return nil, false, fmt.Errorf("fail to map section %s: %s, %w", section.Name(), err, ErrCredFileRead)
		}
		all[section.Name()] = p
	}
	return all, true, nil
}

// Save merges the profile into the existing file under an advisory lock,
// leaving unrelated sections untouched. Last write wins.
func (s *Store) Save(name string, p Profile) error {
	release, err := s.ensureLock()
	if err != nil {
		return err
	}
	defer release()

	cfg, exists, err := s.loadFile()
	if err != nil {
		return err
	}
	if !exists {
		cfg = ini.Empty()
	}
	if err := cfg.Section(name).ReflectFrom(&p); err != nil {
		return fmt.Errorf("fail to set section %s: %s, %w", name, err, ErrCredFileWrite)
	}
	return s.writeAtomic(cfg)
}

func (s *Store) loadFile() (*ini.File, bool, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%s, %w", err, ErrCredFileRead)
	}
	cfg, err := ini.Load(s.path)
	if err != nil {
		return nil, false, fmt.Errorf("fail to read ini file: %s, %w", err, ErrCredFileRead)
	}
	return cfg, true, nil
}

func (s *Store) writeAtomic(cfg *ini.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%s, %w", err, ErrCredFileWrite)
	}
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("%s, %w", err, ErrCredFileWrite)
	}
	defer os.Remove(tmp.Name())

	if _, err := cfg.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%s, %w", err, ErrCredFileWrite)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s, %w", err, ErrCredFileWrite)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("%s, %w", err, ErrCredFileWrite)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s, %w", err, ErrCredFileWrite)
	}
	return nil
}

func (s *Store) ensureLock() (func(), error) {
	acquired, lock, err := s.locker.Acquire(s.lockResource, lockgate.AcquireOptions{Shared: false, Timeout: 30 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err, ErrCannotLock)
	}
	if !acquired {
		return nil, fmt.Errorf("lock on %s not acquired, %w", s.lockResource, ErrCannotLock)
	}
	return func() {
		if err := s.locker.Release(lock); err != nil {
			fmt.Fprintf(os.Stderr, "failed to release lock on %s: %v\n", s.lockResource, err)
		}
	}, nil
}

// lock resources become file names inside the lock dir
func lockResourceName(path string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_")
	return r.Replace(filepath.Clean(path))
}
