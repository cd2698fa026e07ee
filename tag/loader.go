package tag

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/teranos/dxfcore/errors"
)

// ReadOptions configures the tag loaders
type ReadOptions struct {
	// SkipComments drops (999, ...) tags
	SkipComments bool
	// Encoding decodes legacy (pre R2007) text streams, nil means UTF-8.
	// See EncodingFor.
	Encoding encoding.Encoding
}

// ReadASCII reads raw tags from an ASCII DXF stream (untrusted source).
// Values are strings without line endings; use Compile to convert them into
// typed tags. Reading stops after (0, "EOF").
func ReadASCII(r io.Reader, opts ReadOptions) (Tags, error) {
	if opts.Encoding != nil {
		r = transform.NewReader(r, opts.Encoding.NewDecoder())
	}
	br := bufio.NewReader(r)

	var tags Tags
	line := 1
	for {
		codeLine, err := readLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return tags, nil
			}
			return nil, errors.Wrapf(err, "read group code at line %d", line)
		}
		code, convErr := strconv.Atoi(strings.TrimSpace(codeLine))
		if convErr != nil {
			return nil, NewLoadError(KindGroupCode, "Invalid group code "+strconv.Quote(codeLine)).
				WithLine(line).
				WithSuggestion("group codes are integers on odd lines, values on even lines")
		}

		value, err := readLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// group code without value at end of stream
				return tags, nil
			}
			return nil, errors.Wrapf(err, "read value at line %d", line+1)
		}
		line += 2

		if code == Comment && opts.SkipComments {
			continue
		}
		tags = append(tags, Tag{Code: code, Value: value})
		if code == Structure && value == "EOF" {
			// ignore any data beyond EOF
			return tags, nil
		}
	}
}

// readLine returns the next line without "\n" or "\r\n". A last line
// without line ending is returned as is; io.EOF only if nothing was read.
func readLine(br *bufio.Reader) (string, error) {
	s, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// Compile converts raw tags (string values from ReadASCII/ReadJSON or typed
// values from ReadBinary) into typed tags and joins point coordinates into
// single point tags. Coordinates must be written in x, y[, z] order.
func Compile(raw Tags) (Tags, error) {
	out := make(Tags, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		x := raw[i]
		line := 2*i + 1
		code := x.Code

		switch {
		case IsPointCode(code) && !x.IsPoint():
			// y-axis is mandatory
			if i+1 >= len(raw) || raw[i+1].Code != code+10 {
				return nil, NewLoadError(KindCoordinate, "Missing required y coordinate").
					WithLine(line).WithTag(code, x.Str())
			}
			coords := []Tag{x, raw[i+1]}
			i++
			// z-axis just for 3D points
			if i+1 < len(raw) && raw[i+1].Code == code+20 {
				coords = append(coords, raw[i+1])
				i++
			}
			values := make([]float64, len(coords))
			for n, c := range coords {
				f, err := toFloat(c.Value)
				if err != nil {
					return nil, NewLoadError(KindCoordinate, "Invalid floating point values").
						WithLine(line).WithTag(c.Code, c.Str())
				}
				values[n] = f
			}
			out = append(out, NewPoint(code, values...))

		case IsBinaryCode(code):
			if _, ok := x.Value.([]byte); ok {
				out = append(out, x)
				continue
			}
			t, err := Cast(code, x.Str())
			if err != nil {
				return nil, NewLoadError(KindBinary, "Invalid binary data").
					WithLine(line).WithTag(code, x.Str())
			}
			out = append(out, t)

		default:
			s, isText := x.Value.(string)
			if !isText {
				// pre-typed by the binary loader
				out = append(out, x)
				continue
			}
			t, err := Cast(code, s)
			if err != nil {
				return nil, NewLoadError(KindValue, "Invalid tag").
					WithLine(line).WithTag(code, s)
			}
			out = append(out, t)
		}
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	case string:
		return parseFloat(f)
	}
	return 0, errors.Wrapf(errors.ErrInvalidValue, "%v is not a number", v)
}

// Parse compiles DXF text from a trusted source, e.g. entity templates
// embedded in code. Comments are kept.
func Parse(text string) (Tags, error) {
	raw, err := ReadASCII(strings.NewReader(text), ReadOptions{})
	if err != nil {
		return nil, err
	}
	return Compile(raw)
}

// MustParse is Parse for package level templates; it panics on errors
func MustParse(text string) Tags {
	tags, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return tags
}
