package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dxfcore/am"
)

// AuditCmd represents the audit command
var AuditCmd = &cobra.Command{
	Use:   "audit <file>",
	Short: "Load a DXF file and report repairs",
	Long: `Load an ASCII DXF file (or a .json tag list), audit the entity database
and print all fixes as YAML. Use --output to write the repaired entities.

Examples:
  dxfcore audit drawing.dxf
  dxfcore audit drawing.dxf -o repaired.dxf`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

var auditOutput string

func init() {
	AuditCmd.Flags().StringVarP(&auditOutput, "output", "o", "", "Write the repaired entities to this file")
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	doc, reports, err := readDocument(args[0], cfg)
	if err != nil {
		return err
	}
	printLoadSummary(args[0], reports)

	report := doc.Audit()
	if report.Len() == 0 {
		pterm.Success.Println("Audit found nothing to repair")
	} else {
		out, err := report.YAML()
		if err != nil {
			return err
		}
		pterm.Warning.Printfln("Audit repaired %d problems", report.Len())
		fmt.Fprint(cmd.OutOrStdout(), out)
	}

	if auditOutput != "" {
		opts := cfg.WriterOptions()
		opts.Version = doc.DXFVersion()
		return writeDocumentFile(auditOutput, doc, opts, formatOf(auditOutput))
	}
	return nil
}
