package am

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
)

// backupCount is the number of kept backups, path.back1 is the newest
const backupCount = 3

func backupPath(configPath string, n int) string {
	return fmt.Sprintf("%s.back%d", configPath, n)
}

// rotateBackups shifts path.back1 .. path.back2 one up, dropping the oldest,
// and copies the current file to path.back1
func rotateBackups(configPath string) error {
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	oldest := backupPath(configPath, backupCount)
	if err := os.Remove(oldest); err != nil && !os.IsNotExist(err) {
		logger.Warnw("Failed to delete old config backup",
			logger.FieldPath, oldest,
			logger.FieldError, err)
	}
	for n := backupCount - 1; n >= 1; n-- {
		from := backupPath(configPath, n)
		if _, err := os.Stat(from); err != nil {
			continue
		}
		if err := os.Rename(from, backupPath(configPath, n+1)); err != nil {
			return errors.Wrapf(err, "failed to rotate %s", filepath.Base(from))
		}
	}
	return errors.Wrap(
		os.WriteFile(backupPath(configPath, 1), content, DefaultFilePermissions),
		"failed to write backup")
}

// writeConfigFile backs up and replaces configPath with data. A running
// Watcher of the same file skips the change.
func writeConfigFile(configPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(configPath), DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create config directory for %s", configPath)
	}
	if err := rotateBackups(configPath); err != nil {
		return err
	}
	notifyOwnWrite(configPath)
	return errors.Wrapf(os.WriteFile(configPath, data, DefaultFilePermissions), "failed to write config %s", configPath)
}

// SaveToFile validates cfg and writes it as TOML to configPath
func SaveToFile(cfg *Config, configPath string) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "refusing to save invalid config")
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeConfigFile(configPath, data)
}

// UpdateSetting changes a single dotted key (e.g. "writer.dxf_version") in
// the TOML file at configPath, leaving all other content as is.
func UpdateSetting(configPath, key string, value interface{}) error {
	config := make(map[string]interface{})
	if data, err := os.ReadFile(configPath); err == nil {
		if err := toml.Unmarshal(data, &config); err != nil {
			return errors.Wrapf(err, "failed to parse %s", configPath)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", configPath)
	}

	section, name, nested := strings.Cut(key, ".")
	if !nested {
		config[section] = value
	} else {
		table, ok := config[section].(map[string]interface{})
		if !ok {
			table = make(map[string]interface{})
		}
		table[name] = value
		config[section] = table
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	return writeConfigFile(configPath, data)
}
