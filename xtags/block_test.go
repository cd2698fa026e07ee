package xtags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

func layerTags() tag.Tags {
	return tag.Tags{
		tag.New(0, "LAYER"),
		tag.New(5, "7"),
		tag.New(102, "{ACAD_XDICTIONARY"),
		tag.New(360, "63D5"),
		tag.New(102, "}"),
		tag.New(330, "18"),
		tag.New(100, "AcDbSymbolTableRecord"),
		tag.New(100, "AcDbLayerTableRecord"),
		tag.New(2, "0"),
		tag.New(70, 0),
		tag.New(62, 7),
		tag.New(6, "CONTINUOUS"),
	}
}

func TestClassify_Layer(t *testing.T) {
	b, err := Classify(layerTags())
	require.NoError(t, err)

	assert.Equal(t, tag.Tags{
		tag.New(0, "LAYER"),
		tag.New(5, "7"),
		tag.New(102, AppDataRef(0)),
		tag.New(330, "18"),
	}, b.Base)

	require.Len(t, b.AppData, 1)
	assert.Equal(t, tag.Tags{
		tag.New(102, "{ACAD_XDICTIONARY"),
		tag.New(360, "63D5"),
		tag.New(102, "}"),
	}, b.AppData[0])

	require.Len(t, b.Subclasses, 2)
	assert.Equal(t, "AcDbSymbolTableRecord", b.Subclasses[0].Name)
	assert.Empty(t, b.Subclasses[0].Tags)
	assert.Equal(t, "AcDbLayerTableRecord", b.Subclasses[1].Name)
	assert.Equal(t, tag.Tags{
		tag.New(2, "0"),
		tag.New(70, 0),
		tag.New(62, 7),
		tag.New(6, "CONTINUOUS"),
	}, b.Subclasses[1].Tags)

	assert.Empty(t, b.XData)
	assert.Equal(t, "LAYER", b.DXFType())
	assert.Equal(t, "LAYER(#7)", b.Name())
	assert.Equal(t, 3, b.Len())
}

func TestSerialize_RoundTrip(t *testing.T) {
	source := layerTags()
	source = append(source,
		tag.New(1001, "DXFCORE"),
		tag.New(1000, "text"),
		tag.New(1002, "{"),
		tag.New(1070, 1),
		tag.New(1002, "}"),
		tag.New(1001, "ACAD"),
		tag.NewPoint(1010, 1, 2, 3),
	)

	b, err := Classify(source)
	require.NoError(t, err)
	require.Len(t, b.XData, 2)
	assert.Equal(t, "ACAD", b.XData[1][0].Value)

	flat := b.Serialize()
	assert.True(t, source.Equal(flat))

	again, err := Classify(flat)
	require.NoError(t, err)
	assert.Equal(t, b, again)
}

func TestClassify_NoSubclasses(t *testing.T) {
	b := MustParse("  0\nLINE\n  8\n0\n 10\n0\n 20\n0\n1001\nAPP\n1000\nx\n")
	assert.Empty(t, b.Subclasses)
	assert.Len(t, b.Base, 3)
	require.Len(t, b.XData, 1)

	base, ok := b.SubclassAt(0)
	require.True(t, ok)
	assert.Equal(t, b.Base, base)
	_, ok = b.SubclassAt(1)
	assert.False(t, ok)
}

func TestClassify_UnterminatedAppData(t *testing.T) {
	_, err := Classify(tag.Tags{
		tag.New(0, "LINE"),
		tag.New(102, "{FOO"),
		tag.New(330, "1F"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsStructureError(err))
}

func TestClassify_AlternativeAppDataClose(t *testing.T) {
	b, err := Classify(tag.Tags{
		tag.New(0, "LINE"),
		tag.New(102, "{ACAD_REACTORS"),
		tag.New(330, "1F"),
		tag.New(102, "ACAD_REACTORS}"),
		tag.New(100, "AcDbEntity"),
	})
	require.NoError(t, err)
	require.Len(t, b.AppData, 1)
	assert.Len(t, b.AppData[0], 3)
}

func TestClassify_AppDataInSubclass(t *testing.T) {
	b, err := Classify(tag.Tags{
		tag.New(0, "LINE"),
		tag.New(100, "AcDbEntity"),
		tag.New(102, "{APP"),
		tag.New(1, "x"),
		tag.New(102, "}"),
		tag.New(8, "0"),
	})
	require.NoError(t, err)
	require.Len(t, b.Subclasses, 1)
	assert.Equal(t, tag.Tags{tag.New(102, AppDataRef(0)), tag.New(8, "0")}, b.Subclasses[0].Tags)
}

func TestClassify_EmbeddedObject(t *testing.T) {
	source := tag.Tags{
		tag.New(0, "MTEXT"),
		tag.New(100, "AcDbMText"),
		tag.New(1, "text"),
		tag.New(101, "Embedded Object"),
		tag.New(70, 1),
		tag.New(1001, "APP"),
		tag.New(1000, "x"),
	}
	b, err := Classify(source)
	require.NoError(t, err)
	require.Len(t, b.Embedded, 1)
	assert.Len(t, b.Embedded[0], 2)
	require.Len(t, b.XData, 1)

	flat := b.Serialize()
	assert.True(t, source.Equal(flat))
}

func TestSerialize_EmbeddedObjectAndXDataRoundTrip(t *testing.T) {
	source := tag.Tags{
		tag.New(0, "MTEXT"),
		tag.New(5, "A"),
		tag.New(100, "AcDbEntity"),
		tag.New(8, "0"),
		tag.New(101, "Embedded Object"),
		tag.New(70, 1),
		tag.New(1001, "APP"),
		tag.New(1000, "x"),
	}
	b, err := Classify(source)
	require.NoError(t, err)

	flat := b.Serialize()
	assert.True(t, source.Equal(flat))
	assert.Equal(t, tag.New(101, "Embedded Object"), flat[4])
	assert.Equal(t, tag.New(1001, "APP"), flat[6])

	again, err := Classify(flat)
	require.NoError(t, err)
	require.Len(t, again.Embedded, 1)
	assert.Equal(t, tag.Tags{tag.New(101, "Embedded Object"), tag.New(70, 1)}, again.Embedded[0])
	require.Len(t, again.XData, 1)
	assert.Equal(t, tag.Tags{tag.New(1001, "APP"), tag.New(1000, "x")}, again.XData[0])
	assert.Equal(t, b, again)
}

func TestClassify_EmbeddedObjectRunsToXData(t *testing.T) {
	b, err := Classify(tag.Tags{
		tag.New(0, "LINE"),
		tag.New(101, "Embedded Object"),
		tag.New(1, "x"),
		tag.New(100, "AcDbEntity"),
		tag.New(1001, "APP"),
		tag.New(101, "Embedded Object"),
	})
	require.NoError(t, err)
	require.Len(t, b.Embedded, 1)
	assert.Len(t, b.Embedded[0], 3)
	require.Len(t, b.XData, 1)
	assert.Len(t, b.XData[0], 2)
}

func TestClassifyLegacy(t *testing.T) {
	b, err := ClassifyLegacy(tag.Tags{
		tag.New(0, "LINE"),
		tag.New(100, "AcDbEntity"),
		tag.New(8, "0"),
		tag.New(100, "AcDbLine"),
		tag.NewPoint(10, 0, 0, 0),
		tag.New(101, "Embedded Object"),
		tag.New(70, 1),
	})
	require.NoError(t, err)
	assert.Empty(t, b.Subclasses)
	assert.Nil(t, b.Embedded)
	assert.Equal(t, tag.Tags{tag.New(0, "LINE"), tag.New(8, "0"), tag.NewPoint(10, 0, 0, 0)}, b.Base)
}

func TestFindSubclass(t *testing.T) {
	b := MustParse(`  0
TEXT
100
AcDbEntity
  8
0
100
AcDbText
  1
first
100
AcDbText
 73
2
`)
	first, err := b.FindSubclass("AcDbText", 0)
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(1, "first")}, first)

	second, err := b.FindSubclass("AcDbText", 1)
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(73, 2)}, second)

	index, err := b.SubclassIndex("AcDbText", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, index)
	assert.Equal(t, "AcDbText", b.SubclassNameAt(index))

	_, err = b.FindSubclass("AcDbText", 2)
	assert.True(t, errors.Is(err, errors.ErrSubclassNotFound))
	assert.False(t, b.HasSubclass("AcDbLine"))
	assert.True(t, b.HasSubclass("AcDbEntity"))
}

func TestReplaceHandle(t *testing.T) {
	b := MustParse("  0\nLINE\n  5\nA\n  8\n0\n")
	b.ReplaceHandle("FF")
	h, _ := b.Handle()
	assert.Equal(t, "FF", h)

	b = MustParse("  0\nLINE\n  8\n0\n")
	b.ReplaceHandle("1B")
	assert.Equal(t, tag.New(5, "1B"), b.Base[1])
	assert.Len(t, b.Base, 3)
}

func TestClone(t *testing.T) {
	b, err := Classify(layerTags())
	require.NoError(t, err)
	clone := b.Clone()
	assert.Equal(t, b, clone)

	clone.Subclasses[1].Tags[0] = tag.New(2, "WALLS")
	clone.AppData[0][1] = tag.New(360, "FFFF")
	assert.Equal(t, "0", b.Subclasses[1].Tags[0].Value)
	assert.Equal(t, "63D5", b.AppData[0][1].Value)
}
