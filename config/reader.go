package config

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
)

const maxConfigFileSize = 1 << 20

// Read loads a JSON config file over the defaults. Fields missing from the file keep their
// default values and ${VAR} references are expanded from the environment.
func Read(filePath string) (Config, error) {
	if ext := strings.ToLower(filepath.Ext(filePath)); ext != ".json" {
		return Config{}, errors.Errorf("config file %q must be .json", filePath)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return Config{}, err
	}
	if info.Size() > maxConfigFileSize {
		return Config{}, errors.Errorf("config file %q is %d bytes, larger than %d", filePath, info.Size(), maxConfigFileSize)
	}

	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}
	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader decodes JSON from r over the defaults and validates the result. originalPath is
// only used in error messages.
func FromReader(originalPath string, r io.Reader) (Config, error) {
	cfg := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to decode config %q from json", originalPath)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config %q", originalPath)
	}
	return cfg, nil
}

// Write stores cfg as indented JSON.
func Write(filePath string, cfg Config) error {
	md, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	//nolint:gosec
	return os.WriteFile(filePath, append(md, '\n'), 0o644)
}
