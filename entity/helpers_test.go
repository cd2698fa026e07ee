package entity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/xtags"
)

// Test entity types, registered once for the internal and the external
// tests of this package.
var (
	testCircleSchema = schema.New(
		schema.BaseClass,
		schema.AcDbEntity,
		schema.Def("AcDbCircle",
			schema.Attr{Name: "thickness", Code: 39, Default: 0.0, Optional: true},
			schema.Attr{Name: "center", Code: 10, XType: schema.XTypePoint3D, Default: tag.Vec3(0, 0, 0)},
			schema.Attr{Name: "radius", Code: 40, Default: 1.0, Validator: schema.IsPositive, Recovery: schema.RecoverDefault},
		),
	)

	testDupSchema = schema.New(
		schema.BaseClass,
		schema.Def("AcDbTestDup",
			schema.Attr{Name: "first", Code: 1, Default: ""},
			schema.Attr{Name: "second", Code: 1, Default: ""},
			schema.Attr{Name: "count", Code: 70, Default: 0, Validator: schema.IsInIntRange(0, 10)},
		),
	)
)

func init() {
	RegisterGeneric("TESTCIRCLE", testCircleSchema)
	RegisterGeneric("TESTDUP", testDupSchema)
}

// dxf joins code/value pairs into DXF text
func dxf(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func loadText(t *testing.T, text string) (Entity, *LoadReport) {
	t.Helper()
	block, err := xtags.Parse(text)
	require.NoError(t, err)
	e, report, err := Load(block, nil, DefaultLoadOptions())
	require.NoError(t, err)
	return e, report
}

func circleText(subclassTags ...string) string {
	lines := []string{
		"0", "TESTCIRCLE",
		"5", "2A",
		"330", "1F",
		"100", "AcDbEntity",
		"8", "0",
		"100", "AcDbCircle",
	}
	return dxf(append(lines, subclassTags...)...)
}
