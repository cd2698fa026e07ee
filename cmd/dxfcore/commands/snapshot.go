package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dxfcore/am"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/store"
)

// SnapshotCmd represents the snapshot command
var SnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage entity snapshots",
	Long: `snapshot - Save and restore entity databases in SQLite

Snapshots keep the tags of all live entities and the handle seed, a
restored document continues handle numbering behind the saved entities.
The database path is store.path of the configuration.

Examples:
  dxfcore snapshot save drawing.dxf v1    # Save drawing.dxf as "v1"
  dxfcore snapshot list                   # List stored snapshots
  dxfcore snapshot restore v1 -o out.dxf  # Write snapshot "v1"
  dxfcore snapshot delete v1`,
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save <file> <name>",
	Short: "Load a DXF file and save its entities as snapshot",
	Args:  cobra.ExactArgs(2),
	RunE:  runSnapshotSave,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE:  runSnapshotList,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <name>",
	Short: "Restore a snapshot and write its entities",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotRestore,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

var restoreOutput string

func init() {
	snapshotRestoreCmd.Flags().StringVarP(&restoreOutput, "output", "o", "-", "Output file, - for stdout")

	SnapshotCmd.AddCommand(snapshotSaveCmd)
	SnapshotCmd.AddCommand(snapshotListCmd)
	SnapshotCmd.AddCommand(snapshotRestoreCmd)
	SnapshotCmd.AddCommand(snapshotDeleteCmd)
}

// openStore loads the configuration and opens its snapshot store
func openStore() (*am.Config, *store.SnapshotStore, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	s, err := store.Open(cfg, logger.ComponentLogger("dxf.store"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, reports, err := readDocument(args[0], cfg)
	if err != nil {
		return err
	}
	printLoadSummary(args[0], reports)

	info, err := s.Save(cmd.Context(), args[1], doc)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Saved %d entities as %q (%s, next handle %s)",
		info.EntityCount, info.Name, info.DXFVersion.Release(), info.HandleSeed)
	return nil
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	_, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	infos, err := s.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		pterm.Info.Println("No snapshots stored")
		return nil
	}

	data := pterm.TableData{{"Name", "DXF Version", "Entities", "Next Handle", "Created"}}
	for _, info := range infos {
		data = append(data, []string{
			info.Name,
			fmt.Sprintf("%s (%s)", info.DXFVersion, info.DXFVersion.Release()),
			fmt.Sprintf("%d", info.EntityCount),
			info.HandleSeed,
			info.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	cfg, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.Restore(cmd.Context(), args[0], logger.ComponentLogger("dxf.loader"))
	if err != nil {
		return err
	}
	opts := cfg.WriterOptions()
	opts.Version = doc.DXFVersion()
	return writeDocumentFile(restoreOutput, doc, opts, formatOf(restoreOutput))
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	_, s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	pterm.Success.Printfln("Deleted snapshot %q", args[0])
	return nil
}
