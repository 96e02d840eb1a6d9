// Package home resolves the easel home directory layout: the SQLite
// database under data/, generated images under images/, and library
// exports under exports/.
package home

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirName is the directory created under $HOME when no explicit
// path is given.
const DefaultDirName = ".easel"

const (
	dataDirName    = "data"
	imagesDirName  = "images"
	exportsDirName = "exports"
	configFileName = "config.yaml"
	dbFileName     = "easel.db"
)

// Dir is a resolved easel home directory.
type Dir struct {
	path string
}

// New resolves the home directory rooted at path, defaulting to
// ~/.easel when path is empty. Nothing is created until EnsureExists.
func New(path string) (*Dir, error) {
	if path == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(userHome, DefaultDirName)
	}
	return &Dir{path: path}, nil
}

// Path returns the home directory root.
func (d *Dir) Path() string { return d.path }

// DataPath returns the directory holding the prompt database.
func (d *Dir) DataPath() string { return filepath.Join(d.path, dataDirName) }

// DBPath returns the prompt database file path.
func (d *Dir) DBPath() string { return filepath.Join(d.path, dataDirName, dbFileName) }

// ImagesPath returns the directory generated images are saved to.
func (d *Dir) ImagesPath() string { return filepath.Join(d.path, imagesDirName) }

// ExportsPath returns the directory library exports are written to.
func (d *Dir) ExportsPath() string { return filepath.Join(d.path, exportsDirName) }

// ConfigPath returns the default config file path.
func (d *Dir) ConfigPath() string { return filepath.Join(d.path, configFileName) }

// EnsureExists creates the home directory tree. The exports directory
// is created on demand by EnsureExportsDir instead.
func (d *Dir) EnsureExists() error {
	for _, dir := range []string{d.DataPath(), d.ImagesPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// EnsureExportsDir creates the exports directory.
func (d *Dir) EnsureExportsDir() error {
	return os.MkdirAll(d.ExportsPath(), 0o755)
}

// Exists reports whether the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists reports whether the config file exists in the home.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}
