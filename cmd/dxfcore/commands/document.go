package commands

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/dxfcore/am"
	"github.com/teranos/dxfcore/entity"
	"github.com/teranos/dxfcore/entitydb"
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
	"github.com/teranos/dxfcore/tag"
)

// Output formats of written documents
const (
	formatDXF  = "dxf"
	formatJSON = "json"
)

// readDocument loads an ASCII DXF file, or a JSON tag list if path ends
// in .json, into a new document configured by cfg
func readDocument(path string, cfg *am.Config) (*entitydb.Document, []*entity.LoadReport, error) {
	doc, err := entitydb.NewDocumentFromConfig(cfg, logger.ComponentLogger("dxf.loader"))
	if err != nil {
		return nil, nil, err
	}

	var reports []*entity.LoadReport
	if formatOf(path) == formatJSON {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to read %s", path)
		}
		tags, err := tag.ReadJSON(data, cfg.TagReadOptions())
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to parse %s", path)
		}
		reports, err = doc.LoadTags(tags)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to load %s", path)
		}
		return doc, reports, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	reports, err = doc.Read(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to load %s", path)
	}
	return doc, reports, nil
}

// writeDocument exports all live entities of doc as format
func writeDocument(w io.Writer, doc *entitydb.Document, opts tag.WriterOptions, format string) error {
	switch format {
	case formatJSON:
		jw := tag.NewJSONWriter(w, opts, true)
		if err := doc.Export(jw); err != nil {
			return err
		}
		return jw.Close()
	case formatDXF:
		tw := tag.NewTextWriter(w, opts)
		if err := doc.Export(tw); err != nil {
			return err
		}
		return tw.WriteTag(tag.New(tag.Structure, "EOF"))
	}
	return errors.Newf("unsupported format: %s (supported: dxf, json)", format)
}

// writeDocumentFile writes doc to path, or to stdout if path is "" or "-"
func writeDocumentFile(path string, doc *entitydb.Document, opts tag.WriterOptions, format string) error {
	if path == "" || path == "-" {
		return writeDocument(os.Stdout, doc, opts, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := writeDocument(f, doc, opts, format); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrapf(f.Close(), "failed to close %s", path)
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return formatJSON
	}
	return formatDXF
}

// loadSummary counts entities by the kind of load issue
type loadSummary struct {
	Entities    int
	Repaired    int
	Discarded   int
	Unsupported int
}

func summarize(reports []*entity.LoadReport) loadSummary {
	s := loadSummary{Entities: len(reports)}
	for _, r := range reports {
		if r.Fixed() > 0 || len(r.Recovered) > 0 || r.DroppedXData > 0 {
			s.Repaired++
		}
		if r.Discarded() > 0 {
			s.Discarded++
		}
		if len(r.Unsupported) > 0 {
			s.Unsupported++
		}
	}
	return s
}

func printLoadSummary(path string, reports []*entity.LoadReport) {
	s := summarize(reports)
	if s.Repaired == 0 && s.Discarded == 0 && s.Unsupported == 0 {
		pterm.Success.Printfln("Loaded %d entities from %s", s.Entities, path)
		return
	}
	pterm.Warning.Printfln("Loaded %d entities from %s: %d repaired, %d with discarded values, %d with unsupported attributes",
		s.Entities, path, s.Repaired, s.Discarded, s.Unsupported)
}
