package commands

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/teranos/dxfcore/am"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage dxfcore configuration",
	Long: `am - Manage dxfcore configuration ("I am")

Configuration sources (in order of precedence):
1. Environment variables (DXFCORE_* prefix)
2. Project config (./am.toml or ./dxfcore.toml, searched upwards)
3. User config (~/.dxfcore/am.toml)
4. System config (/etc/dxfcore/am.toml)
5. Default values

Examples:
  dxfcore am show                         # Show current configuration
  dxfcore am show --format yaml           # Show configuration as YAML
  dxfcore am get writer.dxf_version       # Get a single value
  dxfcore am set writer.dxf_version AC1015
  dxfcore am validate                     # Validate current configuration
  dxfcore am where                        # List config files in cascade order`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., writer.dxf_version, handles.seed)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value in the project config",
	Long: `Change a configuration value in ./am.toml, keeping up to three backups
(.back1 .. .back3) of the previous file. "true", "false" and integers are
stored typed, everything else as string.`,
	Args: cobra.ExactArgs(2),
	RunE: runAmSet,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	RunE:  runAmWhere,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var (
	configFormat string
	configFile   string
)

func init() {
	amShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json, yaml")
	amSetCmd.Flags().StringVar(&configFile, "file", "am.toml", "Config file to change")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amSetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
}

// marshalConfig renders cfg as toml, json or yaml
func marshalConfig(cfg *am.Config, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
		return append(data, '\n'), nil
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
		return append([]byte("# dxfcore configuration\n"), data...), nil
	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal config to TOML: %w", err)
		}
		return append([]byte("# dxfcore configuration\n"), data...), nil
	}
	return nil, fmt.Errorf("unsupported format: %s (supported: toml, json, yaml)", format)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	data, err := marshalConfig(cfg, configFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runAmGet(cmd *cobra.Command, args []string) error {
	key := args[0]
	if !am.GetViper().IsSet(key) {
		return fmt.Errorf("configuration key %q not found", key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), am.Get(key))
	return nil
}

// settingValue types a command line value for TOML
func settingValue(s string) interface{} {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

func runAmSet(cmd *cobra.Command, args []string) error {
	if err := am.UpdateSetting(configFile, args[0], settingValue(args[1])); err != nil {
		return err
	}
	am.Reset()
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s now holds an invalid configuration (restore from %s.back1): %w", configFile, configFile, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s = %v\n", args[0], am.Get(args[0]))
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Configuration cascade (later overrides earlier):")
	fmt.Fprintln(out, "  [default]  built-in defaults")
	for _, file := range am.ConfigFiles() {
		state := "missing"
		if file.Exists {
			state = "loaded"
		}
		fmt.Fprintf(out, "  [%s]%*s%s (%s)\n", file.Level, 9-len(file.Level), "", file.Path, state)
	}
	fmt.Fprintln(out, "  [env]      DXFCORE_* environment variables")
	return nil
}
