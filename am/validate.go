package am

import (
	"strconv"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/version"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Empty writer version defaults to AC1032
	if c.Writer.DXFVersion != "" {
		if _, err := version.Parse(c.Writer.DXFVersion); err != nil {
			return errors.Wrapf(err, "writer.dxf_version")
		}
	}

	// Handle seed: empty = default "1", "0" is the null handle
	if c.Handles.Seed != "" {
		seed, err := strconv.ParseUint(c.Handles.Seed, 16, 64)
		if err != nil {
			return errors.Newf("handles.seed must be a hex string, got %q", c.Handles.Seed)
		}
		if seed == 0 {
			return errors.New("handles.seed cannot be 0 (reserved null handle)")
		}
	}

	if c.Log.Verbosity < 0 {
		return errors.Newf("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	return nil
}
