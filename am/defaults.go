package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Reader defaults: permissive load path
	v.SetDefault("reader.recover_graphic_attributes", true)
	v.SetDefault("reader.log_unprocessed_tags", false)
	v.SetDefault("reader.skip_comments", true)
	v.SetDefault("reader.legacy_repair", true)

	// Writer defaults
	v.SetDefault("writer.dxf_version", DefaultDXFVersion)
	v.SetDefault("writer.write_handles", true)
	v.SetDefault("writer.force_optional", false)

	// Handle generator
	v.SetDefault("handles.seed", DefaultHandleSeed)

	// Copy settings
	v.SetDefault("copy.reset_handles", true)
	v.SetDefault("copy.copy_extension_dict", true)
	v.SetDefault("copy.copy_xdata", true)
	v.SetDefault("copy.copy_appdata", true)
	v.SetDefault("copy.copy_reactors", false) // rebuilt by the owning context
	v.SetDefault("copy.set_source_of_copy", true)
	v.SetDefault("copy.ignore_copy_errors_in_linked_entities", true)

	// Snapshot store
	v.SetDefault("store.path", DefaultStorePath)

	// Logging
	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)
}

// BindEnvVars explicitly binds settings that deployments commonly override
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("store.path", "DXFCORE_STORE_PATH")
	v.BindEnv("writer.dxf_version", "DXFCORE_WRITER_DXF_VERSION")
	v.BindEnv("log.verbosity", "DXFCORE_LOG_VERBOSITY")
}

// GetStorePath returns the configured snapshot database path
func (c *Config) GetStorePath() string {
	if c.Store.Path == "" {
		return DefaultStorePath
	}
	return c.Store.Path
}

// GetHandleSeed returns the configured handle seed
func (c *Config) GetHandleSeed() string {
	if c.Handles.Seed == "" {
		return DefaultHandleSeed
	}
	return c.Handles.Seed
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Writer: {DXFVersion: %s}, Handles: {Seed: %s}, Store: {Path: %s}}",
		c.Writer.DXFVersion, c.Handles.Seed, c.Store.Path)
}
