package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teranos/dxfcore/am"
	"github.com/teranos/dxfcore/cmd/dxfcore/commands"
	"github.com/teranos/dxfcore/logger"
)

var rootCmd = &cobra.Command{
	Use:   "dxfcore",
	Short: "dxfcore - DXF entity database tools",
	Long: `dxfcore - Load, audit, convert and snapshot DXF entity data.

Available commands:
  am       - Show and change the dxfcore configuration ("I am")
  audit    - Load a DXF file and report load issues and audit fixes
  convert  - Rewrite a DXF file for another DXF version or as JSON tags
  snapshot - Save, list, restore and delete SQLite snapshots
  version  - Show build information

Examples:
  dxfcore am show                      # Show current configuration
  dxfcore audit drawing.dxf            # Report repairs as YAML
  dxfcore convert in.dxf -o out.dxf --dxf-version AC1015
  dxfcore snapshot save drawing.dxf v1 # Store the entities of drawing.dxf`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 'am show' output must stay parseable
		if cmd.Name() == "show" {
			return nil
		}
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json-logs")
		// flags override the log section of the config
		if cfg, err := am.Load(); err == nil {
			if !cmd.Flags().Changed("verbose") {
				verbosity = cfg.Log.Verbosity
			}
			jsonLogs = jsonLogs || cfg.Log.JSON
		}
		if err := logger.InitializeWithVerbosity(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		ctx := logger.WithCommand(cmd.Context(), cmd.CommandPath())
		cmd.SetContext(ctx)
		logger.FromContext(ctx, nil).Debugw("Logger initialized", "level", logger.LevelName(verbosity))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")

	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.AuditCmd)
	rootCmd.AddCommand(commands.ConvertCmd)
	rootCmd.AddCommand(commands.SnapshotCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
