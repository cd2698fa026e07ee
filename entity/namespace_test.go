package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
)

func newCircle(t *testing.T) Entity {
	t.Helper()
	e, err := New("TESTCIRCLE", nil, nil)
	require.NoError(t, err)
	return e
}

func TestNamespace_DefaultSetDiscard(t *testing.T) {
	ns := newCircle(t).DXF()

	v, err := ns.Get("radius")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	assert.False(t, ns.Has("radius"))

	require.NoError(t, ns.Set("radius", 2.5))
	v, err = ns.Get("radius")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
	assert.True(t, ns.Has("radius"))

	ns.Discard("radius")
	v, err = ns.Get("radius")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	assert.False(t, ns.Has("radius"))

	// discarding an absent attribute is a no-op
	ns.Discard("radius")
}

func TestNamespace_SetCastsValues(t *testing.T) {
	ns := newCircle(t).DXF()

	require.NoError(t, ns.Set("radius", 2))
	assert.Equal(t, 2.0, ns.Value("radius"))

	require.NoError(t, ns.Set("center", tag.Vec2(1, 2)))
	assert.Equal(t, tag.Vec3(1, 2, 0), ns.Value("center"))

	require.NoError(t, ns.Set("handle", "ab"))
	assert.Equal(t, "AB", ns.Handle())
}

func TestNamespace_SetRejectsInvalid(t *testing.T) {
	ns := newCircle(t).DXF()

	err := ns.Set("radius", -1.0)
	assert.True(t, errors.Is(err, errors.ErrInvalidAttribute))
	assert.False(t, ns.Has("radius"))

	err = ns.Set("radius", "abc")
	assert.True(t, errors.Is(err, errors.ErrInvalidAttribute))

	err = ns.Set("diameter", 2.0)
	assert.True(t, errors.Is(err, errors.ErrInvalidAttribute))

	err = ns.Set("owner", 12)
	assert.True(t, errors.Is(err, errors.ErrInvalidAttribute))
}

func TestNamespace_UnsetWithoutDefault(t *testing.T) {
	ns := newCircle(t).DXF()

	_, err := ns.Get("true_color")
	assert.True(t, errors.IsAttributeUnset(err))
	assert.Nil(t, ns.Value("true_color"))

	_, err = ns.Get("handle")
	assert.True(t, errors.IsAttributeUnset(err))

	_, err = ns.Get("unknown")
	assert.True(t, errors.Is(err, errors.ErrInvalidAttribute))
}

func TestNamespace_GetOrIgnoresSchemaDefault(t *testing.T) {
	ns := newCircle(t).DXF()

	assert.Equal(t, 5.0, ns.GetOr("radius", 5.0))
	require.NoError(t, ns.Set("radius", 3.0))
	assert.Equal(t, 3.0, ns.GetOr("radius", 5.0))
	assert.Equal(t, "none", ns.GetOr("owner", "none"))
}

func TestNamespace_Attribs(t *testing.T) {
	ns := newCircle(t).DXF()
	require.NoError(t, ns.Update(map[string]interface{}{
		"handle": "2A",
		"layer":  "WALLS",
		"radius": 4.0,
	}))

	assert.Equal(t, map[string]interface{}{
		"handle": "2A",
		"layer":  "WALLS",
		"radius": 4.0,
	}, ns.Attribs())
	assert.Equal(t, 2, ns.Len())
}

func TestNamespace_ExportSubclass(t *testing.T) {
	ns := newCircle(t).DXF()
	require.NoError(t, ns.Set("radius", 2.5))
	require.NoError(t, ns.Set("thickness", 0.0))

	c := tag.NewCollector(tag.DefaultWriterOptions())
	require.NoError(t, ns.ExportSubclass(c, 2))
	assert.Equal(t, tag.Tags{
		tag.New(10, tag.Vec3(0, 0, 0)),
		tag.New(40, 2.5),
	}, c.Tags())

	c = tag.NewCollector(tag.WriterOptions{Version: version.R2018, WithOptional: true})
	require.NoError(t, ns.ExportSubclass(c, 2))
	assert.Len(t, c.Tags(), 3, "optional thickness forced")
}

func TestNamespace_ExportRejectsLineBreaks(t *testing.T) {
	e, err := New("TESTDUP", nil, nil)
	require.NoError(t, err)
	ns := e.DXF()
	require.NoError(t, ns.Set("first", "A\nB"))

	c := tag.NewCollector(tag.DefaultWriterOptions())
	err = ns.Export(c, "first")
	assert.True(t, errors.Is(err, errors.ErrInvalidValue))
}

func TestNamespace_CopyIsIndependent(t *testing.T) {
	src := newCircle(t)
	require.NoError(t, src.DXF().Set("radius", 2.0))

	clone, err := Copy(src, DefaultCopySettings())
	require.NoError(t, err)
	require.NoError(t, clone.DXF().Set("radius", 7.0))

	assert.Equal(t, 2.0, src.DXF().Value("radius"))
	assert.Equal(t, 7.0, clone.DXF().Value("radius"))
}
