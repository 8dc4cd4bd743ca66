package store

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	configFileName    = "config.yaml"
	uiStateFileName   = "ui_state.json"
	snapshotsFileName = "snapshots.sqlite"
)

// Store is the local state directory (~/.autoplex by default).
type Store struct {
	Dir string
}

// ConfigDir returns AUTOPLEX_CONFIG_DIR, or ~/.autoplex.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.autoplex).
	if v := strings.TrimSpace(os.Getenv("AUTOPLEX_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".autoplex"), nil
}

// Default opens the store rooted at ConfigDir.
func Default() (Store, error) {
	dir, err := ConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: dir}, nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) ConfigPath() string {
	return filepath.Join(s.Dir, configFileName)
}

func (s Store) snapshotsPath() string {
	return filepath.Join(s.Dir, snapshotsFileName)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}
