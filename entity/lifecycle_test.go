package entity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/dxfcore/entity"
	"github.com/teranos/dxfcore/entitydb"
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
	"github.com/teranos/dxfcore/xtags"
)

func dxfText(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func newDoc(t *testing.T, v version.Version) *entitydb.Document {
	t.Helper()
	doc, err := entitydb.NewDocument(v, "1", zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return doc
}

// newBoundCircle returns a circle bound to doc with an extension dictionary
// holding one XRECORD entry
func newBoundCircle(t *testing.T, doc *entitydb.Document) (*entity.Generic, *entity.XRecord) {
	t.Helper()
	e, err := entity.New("TESTCIRCLE", map[string]interface{}{"radius": 2.0}, doc)
	require.NoError(t, err)
	require.NoError(t, doc.Add(e))
	circle := e.(*entity.Generic)

	xdict, err := circle.NewExtensionDict()
	require.NoError(t, err)
	rec, err := xdict.AddXRecord("DATA")
	require.NoError(t, err)
	rec.Reset(tag.Tags{tag.New(1, "payload")})
	return circle, rec
}

func TestCopy_ExtensionDictIsDeepCopied(t *testing.T) {
	doc := newDoc(t, version.R2018)
	circle, rec := newBoundCircle(t, doc)

	dup, err := doc.Duplicate(circle)
	require.NoError(t, err)
	clone := dup.(*entity.Generic)

	srcDict, err := circle.ExtensionDict()
	require.NoError(t, err)
	cloneDict, err := clone.ExtensionDict()
	require.NoError(t, err)

	assert.NotEqual(t, circle.Handle(), clone.Handle())
	assert.NotEqual(t, srcDict.Handle(), cloneDict.Handle())
	require.Equal(t, 1, cloneDict.Len())

	entry, err := cloneDict.Get("DATA")
	require.NoError(t, err)
	copied := entry.(*entity.XRecord)
	assert.NotSame(t, rec, copied)
	assert.NotEqual(t, rec.Handle(), copied.Handle())
	assert.Equal(t, rec.Tags(), copied.Tags())

	// ownership chain of the copy
	d, err := cloneDict.Dictionary()
	require.NoError(t, err)
	assert.Equal(t, clone.Handle(), d.Owner())
	assert.Equal(t, d.Handle(), copied.Owner())
	assert.True(t, doc.ObjectsContainer().HasHandle(d.Handle()))
	assert.True(t, doc.ObjectsContainer().HasHandle(copied.Handle()))
	assert.Same(t, circle, clone.SourceOfCopy())
}

func TestCopy_Settings(t *testing.T) {
	doc := newDoc(t, version.R2018)
	circle, _ := newBoundCircle(t, doc)
	circle.SetAppData("MYAPP", tag.Tags{tag.New(1, "a")})
	require.NoError(t, circle.SetXData("ACAD", tag.Tags{tag.New(1000, "x")}))
	circle.AppendReactor("FF")

	clone, err := entity.Copy(circle, entity.DefaultCopySettings())
	require.NoError(t, err)
	c := clone.(*entity.Generic)
	assert.Empty(t, c.Handle())
	assert.Empty(t, c.Owner())
	assert.True(t, c.HasExtensionDict())
	assert.True(t, c.HasAppData("MYAPP"))
	assert.True(t, c.HasXData("ACAD"))
	assert.False(t, c.HasReactors(), "reactors are rebuilt by the owner")
	assert.True(t, c.IsVirtual() || !c.IsBound())

	clone, err = entity.Copy(circle, entity.CopySettings{CopyReactors: true})
	require.NoError(t, err)
	c = clone.(*entity.Generic)
	assert.Equal(t, circle.Handle(), c.Handle(), "handles are kept")
	assert.False(t, c.HasExtensionDict())
	assert.False(t, c.HasAppData("MYAPP"))
	assert.False(t, c.HasXData("ACAD"))
	assert.Equal(t, []string{"FF"}, c.Reactors())
	assert.Nil(t, c.SourceOfCopy())
}

func TestCopy_Independence(t *testing.T) {
	doc := newDoc(t, version.R2018)
	circle, _ := newBoundCircle(t, doc)
	require.NoError(t, circle.SetXData("ACAD", tag.Tags{tag.New(1000, "x")}))

	clone, err := entity.Copy(circle, entity.DefaultCopySettings())
	require.NoError(t, err)
	c := clone.(*entity.Generic)

	require.NoError(t, c.DXF().Set("radius", 9.0))
	require.NoError(t, c.SetXData("ACAD", tag.Tags{tag.New(1000, "changed")}))

	assert.Equal(t, 2.0, circle.DXF().Value("radius"))
	xdata, err := circle.GetXData("ACAD")
	require.NoError(t, err)
	assert.Equal(t, "x", xdata[0].Str())
}

func TestCopy_Destroyed(t *testing.T) {
	e, err := entity.New("TESTCIRCLE", nil, nil)
	require.NoError(t, err)
	entity.Destroy(e)

	_, err = entity.Copy(e, entity.DefaultCopySettings())
	assert.True(t, errors.Is(err, errors.ErrDestroyed))
}

func TestCopy_TagStorageNotSupported(t *testing.T) {
	doc := newDoc(t, version.R2018)
	_, err := doc.LoadEntities([]*xtags.Block{xtags.MustParse(dxfText(
		"0", "UNKNOWNOBJECT",
		"5", "80",
		"100", "AcDbUnknown",
		"90", "7",
	))})
	require.NoError(t, err)
	e, err := doc.DB().Lookup("80")
	require.NoError(t, err)

	_, err = entity.Copy(e, entity.DefaultCopySettings())
	assert.True(t, errors.Is(err, errors.ErrCopyNotSupported))
	_, err = doc.Duplicate(e)
	assert.True(t, errors.Is(err, errors.ErrCopyNotSupported))
}

func TestCopy_IgnoreErrorsInLinkedEntities(t *testing.T) {
	doc := newDoc(t, version.R2018)
	circle, _ := newBoundCircle(t, doc)
	_, err := doc.LoadEntities([]*xtags.Block{xtags.MustParse(dxfText(
		"0", "UNKNOWNOBJECT",
		"5", "80",
		"100", "AcDbUnknown",
	))})
	require.NoError(t, err)
	unknown, err := doc.DB().Lookup("80")
	require.NoError(t, err)
	xdict, err := circle.ExtensionDict()
	require.NoError(t, err)
	require.NoError(t, xdict.Link("UNKNOWN", unknown))

	clone, err := entity.Copy(circle, entity.DefaultCopySettings())
	require.NoError(t, err)
	c := clone.(*entity.Generic)
	cloneDict, err := c.ExtensionDict()
	require.NoError(t, err)
	assert.Equal(t, []string{"DATA"}, cloneDict.Keys())

	strict := entity.DefaultCopySettings()
	strict.IgnoreCopyErrorsInLinkedEntities = false
	_, err = entity.Copy(circle, strict)
	assert.True(t, errors.Is(err, errors.ErrCopyNotSupported))
}

func TestDestroy_Idempotent(t *testing.T) {
	doc := newDoc(t, version.R2018)
	circle, rec := newBoundCircle(t, doc)
	xdict, err := circle.ExtensionDict()
	require.NoError(t, err)
	dictHandle := xdict.Handle()

	doc.DB().DeleteEntity(circle)
	assert.False(t, circle.IsAlive())
	assert.Nil(t, circle.DXF())
	assert.Empty(t, circle.Handle())

	// cascades to the extension dictionary and its hard owned entry
	assert.False(t, rec.IsAlive())
	assert.False(t, doc.DB().Has(dictHandle))
	assert.False(t, xdict.IsAlive())

	entity.Destroy(circle)
	assert.False(t, circle.IsAlive())
	err = entity.Export(circle, tag.NewCollector(tag.DefaultWriterOptions()))
	assert.True(t, errors.Is(err, errors.ErrDestroyed))
	assert.True(t, errors.Is(entity.Bind(circle, doc), errors.ErrDestroyed))
}

func TestDestroy_SourceOfCopyIsReleased(t *testing.T) {
	src, err := entity.New("TESTCIRCLE", nil, nil)
	require.NoError(t, err)
	clone, err := entity.Copy(src, entity.DefaultCopySettings())
	require.NoError(t, err)
	c := clone.(*entity.Generic)
	require.True(t, c.IsCopy())

	entity.Destroy(src)
	assert.Nil(t, c.SourceOfCopy())
	assert.False(t, c.IsCopy())
}

func TestVersionGating(t *testing.T) {
	doc := newDoc(t, version.R2000)
	_, err := doc.LoadEntities([]*xtags.Block{xtags.MustParse(dxfText(
		"0", "TESTCIRCLE",
		"5", "30",
		"100", "AcDbEntity",
		"8", "0",
		"420", "16711680",
		"100", "AcDbCircle",
		"40", "1.5",
	))})
	require.NoError(t, err)
	e, err := doc.DB().Lookup("30")
	require.NoError(t, err)

	assert.True(t, e.DXF().Has("true_color"))
	assert.False(t, e.DXF().IsSupported("true_color"))
	assert.Equal(t, []string{"true_color"}, e.DXF().Unsupported())

	trueColor := tag.New(420, 16711680)
	newer := tag.NewCollector(tag.WriterOptions{Version: version.R2004})
	require.NoError(t, entity.Export(e, newer))
	assert.True(t, newer.HasAll(tag.Tags{trueColor}))

	older := tag.NewCollector(tag.WriterOptions{Version: version.R2000})
	require.NoError(t, entity.Export(e, older))
	assert.False(t, older.HasAll(tag.Tags{trueColor}))
}

func TestExport_Circle(t *testing.T) {
	doc := newDoc(t, version.R2018)
	e, err := entity.New("TESTCIRCLE", map[string]interface{}{"radius": 2.0, "layer": "WALLS"}, doc)
	require.NoError(t, err)
	require.NoError(t, doc.Add(e))
	require.NoError(t, e.(*entity.Generic).SetXData("ACAD", tag.Tags{tag.New(1000, "x")}))

	c := tag.NewCollector(tag.DefaultWriterOptions())
	require.NoError(t, entity.Export(e, c))
	assert.Equal(t, tag.Tags{
		tag.New(0, "TESTCIRCLE"),
		tag.New(5, "1"),
		tag.New(100, "AcDbEntity"),
		tag.New(8, "WALLS"),
		tag.New(100, "AcDbCircle"),
		tag.New(10, tag.Vec3(0, 0, 0)),
		tag.New(40, 2.0),
		tag.New(1001, "ACAD"),
		tag.New(1000, "x"),
	}, c.Tags())

	r12 := tag.NewCollector(tag.WriterOptions{Version: version.R12})
	require.NoError(t, entity.Export(e, r12))
	assert.Equal(t, tag.Tags{
		tag.New(0, "TESTCIRCLE"),
		tag.New(8, "WALLS"),
		tag.New(10, tag.Vec3(0, 0, 0)),
		tag.New(40, 2.0),
		tag.New(1001, "ACAD"),
		tag.New(1000, "x"),
	}, r12.Tags())
}

func TestRoundTrip_LoadExportLoad(t *testing.T) {
	text := dxfText(
		"0", "TESTCIRCLE",
		"5", "2A",
		"102", "{MYAPP",
		"1", "private",
		"102", "}",
		"330", "1F",
		"100", "AcDbEntity",
		"8", "L1",
		"62", "3",
		"100", "AcDbCircle",
		"10", "1", "20", "2", "30", "3",
		"40", "4",
		"71", "9",
		"1001", "ACAD",
		"1000", "x",
	)
	first, err := entity.FromText(text, nil)
	require.NoError(t, err)

	c := tag.NewCollector(tag.DefaultWriterOptions())
	require.NoError(t, entity.Export(first, c))
	block, err := xtags.Classify(c.Tags())
	require.NoError(t, err)
	second, _, err := entity.Load(block, nil, entity.DefaultLoadOptions())
	require.NoError(t, err)

	assert.Equal(t, first.DXF().Attribs(), second.DXF().Attribs())
	assert.Equal(t, first.(*entity.Generic).Unprocessed(2), second.(*entity.Generic).Unprocessed(2))
	data, err := second.(*entity.Generic).GetAppData("MYAPP")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(1, "private")}, data)
}

func TestNew_UnknownTypeAndInvalidAttributes(t *testing.T) {
	_, err := entity.New("NOSUCHTYPE", nil, nil)
	assert.True(t, errors.IsNotFoundError(err))

	_, err = entity.New("TESTCIRCLE", map[string]interface{}{"radius": -1.0}, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidAttribute))
}

func TestRegistry(t *testing.T) {
	types := entity.RegisteredTypes()
	assert.Contains(t, types, "DICTIONARY")
	assert.Contains(t, types, "XRECORD")
	assert.Contains(t, types, "TESTCIRCLE")

	class, ok := entity.Lookup("XRECORD")
	require.True(t, ok)
	assert.Equal(t, "XRECORD", class.DXFType)

	assert.Panics(t, func() {
		entity.Register(&entity.Class{DXFType: "XRECORD", Schema: class.Schema, New: class.New})
	})
}
