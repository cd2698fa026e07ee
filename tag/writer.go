package tag

import (
	"io"

	"golang.org/x/text/encoding"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/version"
)

// Writer receives the tags of exported entities. The option getters let
// exporters decide which tags to emit for the target version.
type Writer interface {
	DXFVersion() version.Version
	WriteHandles() bool
	ForceOptional() bool
	WriteTag(t Tag) error
}

// WriterOptions configures tag writers
type WriterOptions struct {
	Version      version.Version
	WithHandles  bool // emit handles for R12 output
	WithOptional bool // emit optional attributes equal to their default
	// Encoding of text output for versions before R2007, nil means UTF-8
	Encoding encoding.Encoding
}

// DefaultWriterOptions targets the latest version with handles
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{Version: version.Latest, WithHandles: true}
}

func (o WriterOptions) DXFVersion() version.Version {
	if o.Version == "" {
		return version.Latest
	}
	return o.Version
}

func (o WriterOptions) WriteHandles() bool  { return o.WithHandles }
func (o WriterOptions) ForceOptional() bool { return o.WithOptional }

// WriteTags writes all tags to w, stops at the first error
func WriteTags(w Writer, tags Tags) error {
	for _, t := range tags {
		if err := w.WriteTag(t); err != nil {
			return err
		}
	}
	return nil
}

// WriteTag2 writes (code, value) to w
func WriteTag2(w Writer, code int, value interface{}) error {
	return w.WriteTag(Tag{Code: code, Value: value})
}

// TextWriter writes ASCII DXF
type TextWriter struct {
	WriterOptions
	w   io.Writer
	enc *encoding.Encoder
}

// NewTextWriter creates an ASCII DXF writer on w
func NewTextWriter(w io.Writer, opts WriterOptions) *TextWriter {
	tw := &TextWriter{WriterOptions: opts, w: w}
	if opts.Encoding != nil && opts.DXFVersion().Before(version.R2007) {
		tw.enc = encoding.ReplaceUnsupported(opts.Encoding.NewEncoder())
	}
	return tw
}

// WriteTag writes one tag, point tags as consecutive axis tags
func (tw *TextWriter) WriteTag(t Tag) error {
	return tw.WriteString(t.DXFString())
}

// WriteString writes preformatted DXF text
func (tw *TextWriter) WriteString(s string) error {
	var data []byte
	if tw.enc != nil {
		b, err := tw.enc.Bytes([]byte(s))
		if err != nil {
			return errors.Wrap(err, "encode DXF text")
		}
		data = b
	} else {
		data = []byte(s)
	}
	_, err := tw.w.Write(data)
	return err
}

// Collector collects exported tags in memory. Point tags are kept as single
// tags; use Expanded for the axis-by-axis form.
type Collector struct {
	WriterOptions
	tags Tags
}

// NewCollector creates a collector with the given options
func NewCollector(opts WriterOptions) *Collector {
	return &Collector{WriterOptions: opts}
}

// WriteTag implements Writer
func (c *Collector) WriteTag(t Tag) error {
	c.tags = append(c.tags, t)
	return nil
}

// Tags returns the collected tags
func (c *Collector) Tags() Tags {
	return c.tags
}

// Expanded returns the collected tags with points split into axis tags
func (c *Collector) Expanded() Tags {
	return c.tags.Expand()
}

// HasAll reports whether every tag of other was collected
func (c *Collector) HasAll(other Tags) bool {
	for _, want := range other {
		found := false
		for _, t := range c.tags {
			if t.Equal(want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Reset drops all collected tags
func (c *Collector) Reset() {
	c.tags = nil
}
