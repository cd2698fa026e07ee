package tag

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/text/encoding"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/version"
)

// BinarySignature starts every binary DXF file
const BinarySignature = "AutoCAD Binary DXF\r\n\x1a\x00"

// binaryChunkSize is the regular size of binary chunks in ASCII DXF files
const binaryChunkSize = 127

// headerScanLimit limits the search for header variables
const headerScanLimit = 1024

// ReadBinary reads tags from binary DXF data (untrusted source). Numeric
// values are typed, point coordinates are not joined; use Compile.
func ReadBinary(data []byte) (Tags, error) {
	if !bytes.HasPrefix(data, []byte(BinarySignature)) {
		return nil, NewLoadError(KindBinary, "Not a binary DXF data structure").WithOffset(0)
	}

	dxfversion, enc := scanBinaryHeader(data)
	r12 := dxfversion.IsLegacy()
	var decoder *encoding.Decoder
	if enc != nil {
		decoder = enc.NewDecoder()
	}

	truncated := func(offset int) error {
		return NewLoadError(KindTruncated, "Unexpected end of binary DXF data").WithOffset(offset)
	}

	var tags Tags
	index := len(BinarySignature)
	for index < len(data) {
		start := index
		// group code
		var code int
		if r12 {
			code = int(data[index])
			index++
			if code == 0xFF { // extended data, always 2-byte code
				if index+2 > len(data) {
					return nil, truncated(start)
				}
				code = int(binary.LittleEndian.Uint16(data[index:]))
				index += 2
			}
		} else {
			if index+2 > len(data) {
				return nil, truncated(start)
			}
			code = int(binary.LittleEndian.Uint16(data[index:]))
			index += 2
		}

		// value
		need := func(n int) error {
			if index+n > len(data) {
				return truncated(start)
			}
			return nil
		}
		var value interface{}
		switch {
		case IsBinaryCode(code):
			if err := need(1); err != nil {
				return nil, err
			}
			length := int(data[index])
			index++
			if err := need(length); err != nil {
				return nil, err
			}
			value = append([]byte(nil), data[index:index+length]...)
			index += length
		case intKindOf(code) == int16Kind:
			if err := need(2); err != nil {
				return nil, err
			}
			value = int(int16(binary.LittleEndian.Uint16(data[index:])))
			index += 2
		case IsFloatCode(code):
			if err := need(8); err != nil {
				return nil, err
			}
			value = math.Float64frombits(binary.LittleEndian.Uint64(data[index:]))
			index += 8
		case intKindOf(code) == int32Kind:
			if err := need(4); err != nil {
				return nil, err
			}
			value = int(int32(binary.LittleEndian.Uint32(data[index:])))
			index += 4
		case intKindOf(code) == int64Kind:
			if err := need(8); err != nil {
				return nil, err
			}
			value = int(int64(binary.LittleEndian.Uint64(data[index:])))
			index += 8
		case intKindOf(code) == int8Kind:
			if err := need(1); err != nil {
				return nil, err
			}
			value = int(data[index])
			index++
		default: // zero terminated string
			end := bytes.IndexByte(data[index:], 0)
			if end < 0 {
				return nil, truncated(start)
			}
			raw := data[index : index+end]
			index += end + 1
			if decoder != nil {
				decoded, err := decoder.Bytes(raw)
				if err == nil {
					raw = decoded
				}
			}
			value = string(raw)
		}
		tags = append(tags, Tag{Code: code, Value: value})
	}
	return tags, nil
}

// scanBinaryHeader looks for $ACADVER and $DWGCODEPAGE near the start of
// data. Returns R12 and Windows-1252 if absent; encoding is nil for UTF-8.
func scanBinaryHeader(data []byte) (version.Version, encoding.Encoding) {
	dxfversion := version.R12
	limit := min(len(data), headerScanLimit)
	head := data[:limit]

	if i := bytes.Index(head, []byte("$ACADVER")); i >= 0 {
		// skip name, NUL and the 1- or 2-byte group code of the value
		start := i + len("$ACADVER") + 2
		if start < len(data) && data[start] != 'A' {
			start++
		}
		if start+6 <= len(data) {
			dxfversion = version.Version(data[start : start+6])
		}
	}
	if dxfversion.AtLeast(version.R2007) {
		return dxfversion, nil
	}

	if i := bytes.Index(head, []byte("$DWGCODEPAGE")); i >= 0 {
		start := i + len("$DWGCODEPAGE") + 2
		if start < len(data) && data[start] != 'A' {
			start++
		}
		if start < len(data) {
			if end := bytes.IndexByte(data[start:], 0); end >= 0 {
				return dxfversion, EncodingFor(string(data[start : start+end]))
			}
		}
	}
	return dxfversion, EncodingFor("ANSI_1252")
}

// BinaryWriter writes binary DXF. The signature is written before the first
// tag.
type BinaryWriter struct {
	WriterOptions
	w       io.Writer
	r12     bool
	started bool
	enc     *encoding.Encoder
	buf     bytes.Buffer
}

// NewBinaryWriter creates a binary DXF writer on w
func NewBinaryWriter(w io.Writer, opts WriterOptions) *BinaryWriter {
	bw := &BinaryWriter{WriterOptions: opts, w: w, r12: opts.DXFVersion().IsLegacy()}
	if opts.Encoding != nil && opts.DXFVersion().Before(version.R2007) {
		bw.enc = encoding.ReplaceUnsupported(opts.Encoding.NewEncoder())
	}
	return bw
}

// WriteTag writes one tag; points are written axis by axis, binary data in
// chunks of 127 bytes. Binary DXF does not support comments.
func (bw *BinaryWriter) WriteTag(t Tag) error {
	if t.Code == Comment {
		return errors.Wrap(errors.ErrInvalidValue, "binary DXF does not support comments")
	}
	bw.buf.Reset()
	if !bw.started {
		bw.buf.WriteString(BinarySignature)
		bw.started = true
	}
	for _, axis := range t.Expand() {
		if err := bw.encode(axis); err != nil {
			return err
		}
	}
	_, err := bw.w.Write(bw.buf.Bytes())
	return err
}

func (bw *BinaryWriter) writeCode(code int) {
	var b [2]byte
	if bw.r12 {
		if code >= 0xFF {
			bw.buf.WriteByte(0xFF)
		} else {
			bw.buf.WriteByte(byte(code))
			return
		}
	}
	binary.LittleEndian.PutUint16(b[:], uint16(code))
	bw.buf.Write(b[:])
}

func (bw *BinaryWriter) encode(t Tag) error {
	code := t.Code
	if IsBinaryCode(code) {
		data, ok := t.Bytes()
		if !ok {
			parsed, err := Cast(code, t.Str())
			if err != nil {
				return err
			}
			data, _ = parsed.Bytes()
		}
		for len(data) > 0 {
			n := min(len(data), binaryChunkSize)
			bw.writeCode(code)
			bw.buf.WriteByte(byte(n))
			bw.buf.Write(data[:n])
			data = data[n:]
		}
		return nil
	}

	bw.writeCode(code)
	var scratch [8]byte
	switch {
	case IsIntCode(code):
		i, ok := t.Int()
		if !ok {
			v, err := parseInt(t.Str())
			if err != nil {
				return invalidValue(code, t.Str())
			}
			i = v
		}
		switch intKindOf(code) {
		case int8Kind:
			bw.buf.WriteByte(byte(i))
		case int16Kind:
			binary.LittleEndian.PutUint16(scratch[:], uint16(int16(i)))
			bw.buf.Write(scratch[:2])
		case int32Kind:
			binary.LittleEndian.PutUint32(scratch[:], uint32(int32(i)))
			bw.buf.Write(scratch[:4])
		default:
			binary.LittleEndian.PutUint64(scratch[:], uint64(int64(i)))
			bw.buf.Write(scratch[:8])
		}
	case IsFloatCode(code):
		f, ok := t.Float()
		if !ok {
			v, err := parseFloat(t.Str())
			if err != nil {
				return invalidValue(code, t.Str())
			}
			f = v
		}
		binary.LittleEndian.PutUint64(scratch[:], math.Float64bits(f))
		bw.buf.Write(scratch[:8])
	default:
		s := []byte(t.Str())
		if bw.enc != nil {
			if encoded, err := bw.enc.Bytes(s); err == nil {
				s = encoded
			}
		}
		bw.buf.Write(s)
		bw.buf.WriteByte(0)
	}
	return nil
}
