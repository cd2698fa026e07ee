// Package tag implements DXF tags, the (group code, value) pairs every DXF
// stream is made of, and their ASCII, binary and JSON encodings.
package tag

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a 2D or 3D vertex. Dims is 2 or 3; Z is 0 for 2D points.
type Point struct {
	X, Y, Z float64
	Dims    int
}

// Vec2 returns a 2D point
func Vec2(x, y float64) Point {
	return Point{X: x, Y: y, Dims: 2}
}

// Vec3 returns a 3D point
func Vec3(x, y, z float64) Point {
	return Point{X: x, Y: y, Z: z, Dims: 3}
}

// Coords returns the coordinates as slice of length Dims
func (p Point) Coords() []float64 {
	if p.Dims == 2 {
		return []float64{p.X, p.Y}
	}
	return []float64{p.X, p.Y, p.Z}
}

// To2D drops the z-axis
func (p Point) To2D() Point {
	return Vec2(p.X, p.Y)
}

// Close reports whether both points are equal within abs tolerance, a
// missing z-axis counts as 0.
func (p Point) Close(other Point, abs float64) bool {
	return math.Abs(p.X-other.X) <= abs &&
		math.Abs(p.Y-other.Y) <= abs &&
		math.Abs(p.Z-other.Z) <= abs
}

func (p Point) String() string {
	parts := make([]string, 0, 3)
	for _, c := range p.Coords() {
		parts = append(parts, FormatFloat(c))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Tag is one immutable DXF tag. Value holds string, int, float64, Point or
// []byte according to TypeOf(Code); tags read from text before Compile hold
// raw strings.
type Tag struct {
	Code  int
	Value interface{}
}

// None is a special marker tag
var None = Tag{Code: 0, Value: 0}

// New returns a tag without type conversion
func New(code int, value interface{}) Tag {
	return Tag{Code: code, Value: value}
}

// NewPoint returns a point tag from 2 or 3 coordinates
func NewPoint(code int, coords ...float64) Tag {
	switch len(coords) {
	case 2:
		return Tag{Code: code, Value: Vec2(coords[0], coords[1])}
	case 3:
		return Tag{Code: code, Value: Vec3(coords[0], coords[1], coords[2])}
	}
	panic(fmt.Sprintf("point tag %d requires 2 or 3 coordinates, got %d", code, len(coords)))
}

// Str returns the value as string: strings as is, numbers formatted the way
// they are written to DXF, binary data as uppercase hex.
func (t Tag) Str() string {
	switch v := t.Value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return FormatFloat(v)
	case []byte:
		return strings.ToUpper(hex.EncodeToString(v))
	case Point:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int returns an int value
func (t Tag) Int() (int, bool) {
	v, ok := t.Value.(int)
	return v, ok
}

// Float returns a float64 value, int values are converted
func (t Tag) Float() (float64, bool) {
	switch v := t.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Point returns a point value
func (t Tag) Point() (Point, bool) {
	v, ok := t.Value.(Point)
	return v, ok
}

// Bytes returns a binary value
func (t Tag) Bytes() ([]byte, bool) {
	v, ok := t.Value.([]byte)
	return v, ok
}

// IsPoint reports a compiled point tag
func (t Tag) IsPoint() bool {
	_, ok := t.Value.(Point)
	return ok
}

// Equal compares code and value; binary values are compared by content
func (t Tag) Equal(other Tag) bool {
	if t.Code != other.Code {
		return false
	}
	if a, ok := t.Value.([]byte); ok {
		b, ok := other.Value.([]byte)
		return ok && bytes.Equal(a, b)
	}
	if _, ok := other.Value.([]byte); ok {
		return false
	}
	return t.Value == other.Value
}

// DXFString returns the ASCII DXF encoding, points expanded to one line
// pair per axis
func (t Tag) DXFString() string {
	if p, ok := t.Value.(Point); ok {
		var sb strings.Builder
		for i, c := range p.Coords() {
			fmt.Fprintf(&sb, "%3d\n%s\n", t.Code+i*10, FormatFloat(c))
		}
		return sb.String()
	}
	return fmt.Sprintf("%3d\n%s\n", t.Code, t.Str())
}

// Expand returns the single axis tags of a point tag, other tags unchanged
func (t Tag) Expand() []Tag {
	p, ok := t.Value.(Point)
	if !ok {
		return []Tag{t}
	}
	coords := p.Coords()
	out := make([]Tag, len(coords))
	for i, c := range coords {
		out[i] = Tag{Code: t.Code + i*10, Value: c}
	}
	return out
}

func (t Tag) String() string {
	if _, ok := t.Value.(string); ok {
		return fmt.Sprintf("(%d, %q)", t.Code, t.Value)
	}
	return fmt.Sprintf("(%d, %s)", t.Code, t.Str())
}

// FormatFloat renders f like DXF writers do: shortest representation that
// round-trips, always with a decimal point or exponent.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	abs := math.Abs(f)
	var s string
	if abs == 0 || (abs >= 1e-4 && abs < 1e16) {
		s = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		s = strconv.FormatFloat(f, 'g', -1, 64)
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// IsAppDataMarker reports a (102, "{APPID") opening tag
func IsAppDataMarker(t Tag) bool {
	s, ok := t.Value.(string)
	return t.Code == AppData && ok && strings.HasPrefix(s, "{")
}

// IsAppDataClose reports a (102, "}") or (102, "APPID}") closing tag
func IsAppDataClose(t Tag) bool {
	s, ok := t.Value.(string)
	return t.Code == AppData && ok && strings.HasSuffix(s, "}") && !strings.HasPrefix(s, "{")
}

// IsEmbeddedObjectMarker reports a (101, "Embedded Object") tag
func IsEmbeddedObjectMarker(t Tag) bool {
	return t.Code == EmbeddedObject && t.Value == EmbeddedObjectStr
}

// UniformAppID prefixes appid with "{" if missing
func UniformAppID(appid string) string {
	if strings.HasPrefix(appid, "{") {
		return appid
	}
	return "{" + appid
}
