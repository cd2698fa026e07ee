package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dxfcore/am"
	"github.com/teranos/dxfcore/version"
)

// ConvertCmd represents the convert command
var ConvertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Rewrite DXF entities for another DXF version or format",
	Long: `Load the entities of a DXF file and write them for the target DXF
version. Attributes the target version does not support are dropped.
Output ending in .json is written as a JSON tag list.

With --watch the conversion is repeated whenever the project config
(./am.toml or ./dxfcore.toml) changes, until interrupted.

Examples:
  dxfcore convert drawing.dxf -o r2000.dxf --dxf-version AC1015
  dxfcore convert drawing.dxf -o tags.json
  dxfcore convert tags.json --format dxf
  dxfcore convert drawing.dxf -o out.dxf --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

var (
	convertOutput  string
	convertVersion string
	convertFormat  string
	convertWatch   bool
)

func init() {
	ConvertCmd.Flags().StringVarP(&convertOutput, "output", "o", "-", "Output file, - for stdout")
	ConvertCmd.Flags().StringVar(&convertVersion, "dxf-version", "", "Target DXF version (AC1009 .. AC1032 or R12 .. R2018), default from config")
	ConvertCmd.Flags().StringVar(&convertFormat, "format", "", "Output format: dxf, json (default from output extension)")
	ConvertCmd.Flags().BoolVarP(&convertWatch, "watch", "w", false, "Convert again on project config changes")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := convert(args[0], cfg); err != nil {
		return err
	}
	if !convertWatch {
		return nil
	}

	path := am.ProjectConfig()
	if path == "" {
		return fmt.Errorf("--watch requires a project config (am.toml or dxfcore.toml)")
	}
	w, err := am.NewWatcher(path)
	if err != nil {
		return err
	}
	w.OnReload(func(*am.Config) error {
		// the watcher validated the project file, Load merges the cascade
		cfg, err := am.Load()
		if err != nil {
			return err
		}
		return convert(args[0], cfg)
	})
	pterm.Info.Printfln("Watching %s, press Ctrl+C to stop", w.Path())
	return w.Run(cmd.Context())
}

// convert writes the entities of input as configured by cfg and the
// command flags
func convert(input string, cfg *am.Config) error {
	if convertVersion != "" {
		target, err := version.Parse(convertVersion)
		if err != nil {
			return err
		}
		// the document version gates the loaded attributes
		converted := *cfg
		converted.Writer.DXFVersion = target.String()
		cfg = &converted
	}

	doc, reports, err := readDocument(input, cfg)
	if err != nil {
		return err
	}
	if convertOutput != "-" {
		printLoadSummary(input, reports)
	}

	format := convertFormat
	if format == "" {
		format = formatOf(convertOutput)
	}
	opts := cfg.WriterOptions()
	opts.Version = doc.DXFVersion()
	if err := writeDocumentFile(convertOutput, doc, opts, format); err != nil {
		return err
	}
	if convertOutput != "-" {
		pterm.Success.Printfln("Wrote %d entities as %s %s to %s",
			doc.DB().Len(), format, doc.DXFVersion().Release(), convertOutput)
	}
	return nil
}
