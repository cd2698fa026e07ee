package tag

import (
	"io"
	"math"

	"github.com/buger/jsonparser"
	"github.com/goccy/go-json"

	"github.com/teranos/dxfcore/errors"
)

// ReadJSON reads raw tags from a JSON list of [group-code, value] pairs.
// Point values may be given as coordinate lists ([10, [1.0, 2.0, 0.0]]),
// which are expanded into single axis tags; use Compile afterwards. Reading
// stops after [0, "EOF"].
func ReadJSON(data []byte, opts ReadOptions) (Tags, error) {
	var (
		tags     Tags
		firstErr error
		number   int
		eof      bool
	)

	fail := func(msg string) {
		if firstErr == nil {
			firstErr = NewLoadError(KindJSON, msg).WithOffset(number)
		}
	}

	_, err := jsonparser.ArrayEach(data, func(pair []byte, dataType jsonparser.ValueType, _ int, _ error) {
		defer func() { number++ }()
		if firstErr != nil || eof {
			return
		}
		if dataType != jsonparser.Array {
			fail("Tag is not a [group-code, value] pair")
			return
		}

		code64, err := jsonparser.GetInt(pair, "[0]")
		if err != nil {
			raw, _, _, _ := jsonparser.Get(pair, "[0]")
			fail("Invalid group code " + string(raw))
			return
		}
		code := int(code64)

		value, valueType, _, err := jsonparser.Get(pair, "[1]")
		if err != nil {
			fail("Missing tag value")
			return
		}

		switch valueType {
		case jsonparser.Array:
			if !IsPointCode(code) {
				fail("List value for non-point group code")
				return
			}
			axis := 0
			_, err := jsonparser.ArrayEach(value, func(coord []byte, t jsonparser.ValueType, _ int, _ error) {
				if t != jsonparser.Number {
					fail("Invalid coordinate " + string(coord))
					return
				}
				tags = append(tags, Tag{Code: code + axis*10, Value: string(coord)})
				axis++
			})
			if err != nil {
				fail("Invalid coordinate list")
			}
			return
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				fail("Invalid string value")
				return
			}
			if code == Comment && opts.SkipComments {
				return
			}
			tags = append(tags, Tag{Code: code, Value: s})
			if code == Structure && s == "EOF" {
				eof = true
			}
		case jsonparser.Number:
			tags = append(tags, Tag{Code: code, Value: string(value)})
		default:
			fail("Invalid value type " + valueType.String())
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, errors.Wrap(NewLoadError(KindJSON, "Malformed JSON tag list"), err.Error())
	}
	return tags, nil
}

// JSONWriter writes tags as JSON list of [group-code, value] pairs. In
// compact mode numbers are written as JSON numbers and points as coordinate
// lists, otherwise every value is a string and points are expanded.
type JSONWriter struct {
	WriterOptions
	w       io.Writer
	compact bool
	count   int
	closed  bool
}

// NewJSONWriter creates a JSON tag writer on w; call Close to terminate the
// list.
func NewJSONWriter(w io.Writer, opts WriterOptions, compact bool) *JSONWriter {
	return &JSONWriter{WriterOptions: opts, w: w, compact: compact}
}

// WriteTag implements Writer
func (jw *JSONWriter) WriteTag(t Tag) error {
	if jw.closed {
		return errors.New("JSON tag writer is closed")
	}
	if p, ok := t.Point(); ok && jw.compact {
		coords := make([]json.RawMessage, 0, 3)
		for _, c := range p.Coords() {
			coords = append(coords, jsonNumber(c))
		}
		return jw.writePair(t.Code, coords)
	}
	for _, axis := range t.Expand() {
		var value interface{}
		switch v := axis.Value.(type) {
		case int:
			if jw.compact {
				value = v
			} else {
				value = axis.Str()
			}
		case float64:
			if jw.compact {
				value = jsonNumber(v)
			} else {
				value = axis.Str()
			}
		default:
			value = axis.Str()
		}
		if err := jw.writePair(axis.Code, value); err != nil {
			return err
		}
	}
	return nil
}

func (jw *JSONWriter) writePair(code int, value interface{}) error {
	data, err := json.Marshal([]interface{}{code, value})
	if err != nil {
		return errors.Wrapf(err, "encode tag %d", code)
	}
	sep := ",\n"
	if jw.count == 0 {
		sep = "[\n"
	}
	jw.count++
	if _, err := io.WriteString(jw.w, sep); err != nil {
		return err
	}
	_, err = jw.w.Write(data)
	return err
}

// Close terminates the JSON list
func (jw *JSONWriter) Close() error {
	if jw.closed {
		return nil
	}
	jw.closed = true
	if jw.count == 0 {
		_, err := io.WriteString(jw.w, "[]\n")
		return err
	}
	_, err := io.WriteString(jw.w, "\n]\n")
	return err
}

// jsonNumber keeps the DXF float formatting ("1.0" not "1"); non-finite
// values are not valid JSON numbers and become strings.
func jsonNumber(f float64) json.RawMessage {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return json.RawMessage(`"` + FormatFloat(f) + `"`)
	}
	return json.RawMessage(FormatFloat(f))
}
