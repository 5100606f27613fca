// Package config persists the installer's settings file, which the
// difference_machine add-on reads to locate the forester executable.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	// SetupDirName is the per-user settings directory under $HOME.
	SetupDirName = ".dfm-setup"
	// FileName is the settings file inside SetupDirName.
	FileName = "setup.cfg"
	// Section is the INI section holding the install location.
	Section = "forester"
	// KeyPath is the key holding the install directory.
	KeyPath = "path"

	setupDirPerm  = 0o755
	setupFilePerm = 0o644
)

// ErrNoInstallPath indicates the settings file has no usable path entry.
var ErrNoInstallPath = errors.New("install path not recorded")

// SetupFilePath returns ~/.dfm-setup/setup.cfg for the given home.
func SetupFilePath(home string) string {
	return filepath.Join(home, SetupDirName, FileName)
}

// WriteInstallPath replaces the file at path with a single [forester]
// section whose path key is installDir. Prior content is discarded.
func WriteInstallPath(path, installDir string) error {
	cfg := ini.Empty()
	sec, err := cfg.NewSection(Section)
	if err != nil {
		return fmt.Errorf("creating section: %w", err)
	}
	if _, err = sec.NewKey(KeyPath, installDir); err != nil {
		return fmt.Errorf("setting %s: %w", KeyPath, err)
	}

	var buf bytes.Buffer
	if _, err = cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("encoding setup config: %w", err)
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(path), setupDirPerm); mkdirErr != nil {
		return fmt.Errorf("creating setup directory: %w", mkdirErr)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if writeErr := os.WriteFile(tmpPath, buf.Bytes(), setupFilePerm); writeErr != nil {
		return fmt.Errorf("writing setup config temp file: %w", writeErr)
	}
	if renameErr := os.Rename(tmpPath, path); renameErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming setup config temp file: %w", renameErr)
	}
	return nil
}

// ReadInstallPath returns the recorded install directory.
func ReadInstallPath(path string) (string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return "", fmt.Errorf("loading %s: %w", path, err)
	}

	sec, err := cfg.GetSection(Section)
	if err != nil {
		return "", fmt.Errorf("%w: no [%s] section in %s", ErrNoInstallPath, Section, path)
	}
	value := strings.TrimSpace(sec.Key(KeyPath).String())
	if value == "" {
		return "", fmt.Errorf("%w: empty %s in %s", ErrNoInstallPath, KeyPath, path)
	}
	return value, nil
}
