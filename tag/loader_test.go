package tag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/version"
)

const circle = `  0
CIRCLE
  5
2F
330
1F
100
AcDbEntity
  8
0
100
AcDbCircle
 10
1.5
 20
2.0
 30
0.0
 40
3.0
  0
EOF
`

func TestReadASCII(t *testing.T) {
	raw, err := ReadASCII(strings.NewReader(circle), ReadOptions{SkipComments: true})
	require.NoError(t, err)
	require.Len(t, raw, 11)
	assert.Equal(t, New(0, "CIRCLE"), raw[0])
	assert.Equal(t, New(10, "1.5"), raw[6])
	assert.Equal(t, New(0, "EOF"), raw[10])
}

func TestReadASCII_CRLFAndComments(t *testing.T) {
	text := "999\r\ncomment\r\n  0\r\nLINE\r\n  8\r\nWALLS"
	raw, err := ReadASCII(strings.NewReader(text), ReadOptions{})
	require.NoError(t, err)
	require.Len(t, raw, 3)
	assert.Equal(t, New(999, "comment"), raw[0])
	assert.Equal(t, New(8, "WALLS"), raw[2])

	raw, err = ReadASCII(strings.NewReader(text), ReadOptions{SkipComments: true})
	require.NoError(t, err)
	assert.Len(t, raw, 2)
}

func TestReadASCII_StopsAtEOF(t *testing.T) {
	raw, err := ReadASCII(strings.NewReader("  0\nEOF\ngarbage\n"), ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, raw, 1)
}

func TestReadASCII_InvalidGroupCode(t *testing.T) {
	_, err := ReadASCII(strings.NewReader("  0\nLINE\nXX\n0\n"), ReadOptions{})
	require.Error(t, err)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, KindGroupCode, loadErr.Kind)
	assert.Equal(t, 3, loadErr.Line)
	assert.True(t, errors.IsStructureError(err))
	assert.Contains(t, err.Error(), "near line 3")
}

func TestReadASCII_Encoding(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("  1\nStraße\n")
	require.NoError(t, err)

	raw, err := ReadASCII(strings.NewReader(encoded), ReadOptions{Encoding: EncodingFor("ANSI_1252")})
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "Straße", raw[0].Value)
}

func TestCompile(t *testing.T) {
	tags, err := Parse(circle)
	require.NoError(t, err)
	require.Len(t, tags, 9)
	assert.Equal(t, NewPoint(10, 1.5, 2, 0), tags[6])
	assert.Equal(t, New(40, 3.0), tags[7])

	t.Run("2D point followed by other tag", func(t *testing.T) {
		tags, err := Parse(" 10\n1\n 20\n2\n 40\n1\n")
		require.NoError(t, err)
		require.Len(t, tags, 2)
		assert.Equal(t, NewPoint(10, 1, 2), tags[0])
	})

	t.Run("2D point at end of stream", func(t *testing.T) {
		tags, err := Parse(" 11\n1\n 21\n2\n")
		require.NoError(t, err)
		assert.Equal(t, Tags{NewPoint(11, 1, 2)}, tags)
	})

	t.Run("missing y coordinate", func(t *testing.T) {
		_, err := Parse(" 10\n1\n 30\n2\n")
		require.Error(t, err)
		var loadErr *LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Equal(t, KindCoordinate, loadErr.Kind)
	})

	t.Run("invalid float", func(t *testing.T) {
		_, err := Parse(" 40\nabc\n")
		assert.True(t, errors.IsStructureError(err))
	})
}

func TestBinaryRoundTrip(t *testing.T) {
	source := Tags{
		New(0, "CIRCLE"),
		New(5, "2F"),
		New(100, "AcDbCircle"),
		New(62, -3),
		New(90, 100000),
		New(160, 1<<40),
		New(290, 1),
		NewPoint(10, 1.5, 2, 3),
		New(40, 0.25),
		New(310, bytes.Repeat([]byte{0xAB}, 130)),
		New(1001, "ACAD"),
		New(1070, 7),
	}

	for _, v := range []version.Version{version.R12, version.R2018} {
		t.Run(v.Release(), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewBinaryWriter(&buf, WriterOptions{Version: v})
			require.NoError(t, WriteTags(w, source))
			require.True(t, bytes.HasPrefix(buf.Bytes(), []byte(BinarySignature)))

			raw, err := readBinaryAs(buf.Bytes(), v)
			require.NoError(t, err)
			tags, err := Compile(raw)
			require.NoError(t, err)

			// binary data is split into chunks of 127 bytes
			require.Len(t, tags, len(source)+1)
			assert.Equal(t, source[:9], tags[:9])
			assert.Len(t, tags[9].Value, 127)
			assert.Len(t, tags[10].Value, 3)
			assert.Equal(t, source[10:], tags[11:])
		})
	}
}

// readBinaryAs prefixes a minimal header so the reader picks the right
// group code width for v
func readBinaryAs(data []byte, v version.Version) (Tags, error) {
	if v.IsLegacy() {
		return ReadBinary(data)
	}
	var header bytes.Buffer
	w := NewBinaryWriter(&header, WriterOptions{Version: v})
	if err := WriteTags(w, Tags{New(9, "$ACADVER"), New(1, string(v))}); err != nil {
		return nil, err
	}
	header.Write(data[len(BinarySignature):])
	tags, err := ReadBinary(header.Bytes())
	if err != nil {
		return nil, err
	}
	return tags[2:], nil
}

func TestReadBinary_Errors(t *testing.T) {
	_, err := ReadBinary([]byte("  0\nLINE\n"))
	assert.True(t, errors.IsStructureError(err))

	data := append([]byte(BinarySignature), 40, 0, 0) // truncated double
	_, err = ReadBinary(data)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, KindTruncated, loadErr.Kind)
}

func TestBinaryWriter_RejectsComments(t *testing.T) {
	w := NewBinaryWriter(&bytes.Buffer{}, DefaultWriterOptions())
	assert.Error(t, w.WriteTag(New(999, "comment")))
}

func TestReadJSON(t *testing.T) {
	data := []byte(`[
		[0, "LINE"],
		[999, "a comment"],
		[8, "WALLS"],
		[62, 1],
		[10, [1.0, 2.0, 3.0]],
		[11, "4.5"],
		[21, 5],
		[0, "EOF"],
		[0, "IGNORED"]
	]`)

	raw, err := ReadJSON(data, ReadOptions{SkipComments: true})
	require.NoError(t, err)
	tags, err := Compile(raw)
	require.NoError(t, err)

	assert.Equal(t, Tags{
		New(0, "LINE"),
		New(8, "WALLS"),
		New(62, 1),
		NewPoint(10, 1, 2, 3),
		NewPoint(11, 4.5, 5),
		New(0, "EOF"),
	}, tags)
}

func TestReadJSON_InvalidGroupCode(t *testing.T) {
	_, err := ReadJSON([]byte(`[[0, "LINE"], ["8", "0"]]`), ReadOptions{})
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, KindJSON, loadErr.Kind)
	assert.Equal(t, 1, loadErr.Offset)
	assert.Contains(t, err.Error(), "in tag number 1")
}

func TestJSONWriterRoundTrip(t *testing.T) {
	source := Tags{
		New(0, "TEXT"),
		New(1, `say "hi"`),
		New(70, 4),
		NewPoint(10, 1, 2, 0),
		New(40, 2.5),
	}

	for _, compact := range []bool{true, false} {
		var buf bytes.Buffer
		w := NewJSONWriter(&buf, DefaultWriterOptions(), compact)
		require.NoError(t, WriteTags(w, source))
		require.NoError(t, w.Close())

		raw, err := ReadJSON(buf.Bytes(), ReadOptions{})
		require.NoError(t, err)
		tags, err := Compile(raw)
		require.NoError(t, err)
		assert.Equal(t, source, tags, "compact=%v", compact)
	}
}

func TestTextWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, DefaultWriterOptions())
	require.NoError(t, WriteTags(w, Tags{New(0, "POINT"), NewPoint(10, 1, 2, 3)}))
	assert.Equal(t, "  0\nPOINT\n 10\n1.0\n 20\n2.0\n 30\n3.0\n", buf.String())

	tags, err := Parse(buf.String())
	require.NoError(t, err)
	assert.Equal(t, NewPoint(10, 1, 2, 3), tags[1])
}

func TestTextWriter_LegacyEncoding(t *testing.T) {
	var buf bytes.Buffer
	w := NewTextWriter(&buf, WriterOptions{Version: version.R2000, Encoding: EncodingFor("ANSI_1252")})
	require.NoError(t, w.WriteTag(New(1, "ß")))
	assert.Equal(t, []byte("  1\n\xdf\n"), buf.Bytes())
}

func TestCollector(t *testing.T) {
	c := NewCollector(DefaultWriterOptions())
	require.NoError(t, WriteTag2(c, 0, "LINE"))
	require.NoError(t, c.WriteTag(NewPoint(10, 1, 2)))

	assert.Len(t, c.Tags(), 2)
	assert.Len(t, c.Expanded(), 3)
	assert.True(t, c.HasAll(Tags{New(0, "LINE")}))
	assert.False(t, c.HasAll(Tags{New(0, "ARC")}))
	assert.Equal(t, version.Latest, c.DXFVersion())
	assert.True(t, c.WriteHandles())

	c.Reset()
	assert.Empty(t, c.Tags())
}

func TestLoadError_Terminal(t *testing.T) {
	err := NewLoadError(KindValue, "Invalid tag").WithLine(12).WithTag(40, "abc").WithSuggestion("check the producer")
	out := err.FormatError(ErrorContextTerminal)
	assert.Contains(t, out, "Invalid tag")
	assert.Contains(t, out, "near line 12")
	assert.Contains(t, out, "check the producer")
	assert.Equal(t, "Invalid tag near line 12. Suggestions: check the producer", err.Error())
}
