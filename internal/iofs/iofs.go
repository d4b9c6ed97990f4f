// Package iofs prepares taillookup directories and the default
// configuration file.
package iofs

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"

	"github.com/taillookup/taillookup/pkg/config"
)

// ConfigYAML is the documented default configuration.
//
//go:embed config.yaml
var ConfigYAML string

var errNotDir = errors.New("path exists and is not a directory")

// Dirs lists the directories taillookup keeps under homeDir: config,
// download cache, snapshots and logs.
func Dirs(homeDir string) []string {
	return []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.DataDir(homeDir),
		config.LogDir(homeDir),
	}
}

// EnsureDirs creates every directory from Dirs that is missing.
func EnsureDirs(homeDir string) error {
	for _, v := range Dirs(homeDir) {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return nil
	case err == nil:
		return CreateDirError(dir, errNotDir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}
	return nil
}

// EnsureConfigFile writes the default config.yaml if there is no config
// file yet and reports whether it did. The file appears complete or not
// at all.
func EnsureConfigFile(homeDir string) (bool, error) {
	configPath := config.ConfigFilePath(homeDir)

	_, err := os.Stat(configPath)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, ReadFileError(configPath, err)
	}

	if err = writeFile(configPath, []byte(ConfigYAML)); err != nil {
		return false, WriteConfigError(configPath, err)
	}
	return true, nil
}

// writeFile writes data to a temporary file next to path and renames it.
func writeFile(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".config-*.yaml")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err = f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
