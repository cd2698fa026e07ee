package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dxfcore/errors"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		code int
		want Type
	}{
		{0, TypeString},
		{1, TypeString},
		{5, TypeString},
		{10, TypePoint},
		{18, TypePoint},
		{19, TypeFloat},
		{20, TypeFloat},
		{40, TypeFloat},
		{62, TypeInt},
		{70, TypeInt},
		{90, TypeInt},
		{110, TypePoint},
		{160, TypeInt},
		{210, TypePoint},
		{280, TypeInt},
		{290, TypeInt},
		{310, TypeBinary},
		{330, TypeString},
		{420, TypeInt},
		{1000, TypeString},
		{1004, TypeBinary},
		{1010, TypePoint},
		{1040, TypeFloat},
		{1070, TypeInt},
		{1071, TypeInt},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeOf(tt.code), "code %d", tt.code)
	}
}

func TestPointerCodes(t *testing.T) {
	assert.True(t, IsSoftPointer(330))
	assert.True(t, IsSoftPointer(1005))
	assert.True(t, IsHardPointer(340))
	assert.True(t, IsHardPointer(390))
	assert.True(t, IsSoftOwner(350))
	assert.True(t, IsHardOwner(360))
	assert.False(t, IsTranslatablePointer(320))
	assert.True(t, IsTranslatablePointer(330))
	assert.Equal(t, XDataHandle, XCodeFor(330))
	assert.Equal(t, XDataInt16, XCodeFor(70))
	assert.Equal(t, XDataFloat, XCodeFor(40))
	assert.Equal(t, XDataString, XCodeFor(8))
	assert.Equal(t, XDataBinary, XCodeFor(310))
}

func TestCast(t *testing.T) {
	t.Run("int", func(t *testing.T) {
		tag, err := Cast(70, "16")
		require.NoError(t, err)
		assert.Equal(t, 16, tag.Value)
	})

	t.Run("float written into int field is truncated", func(t *testing.T) {
		tag, err := Cast(62, "7.0")
		require.NoError(t, err)
		assert.Equal(t, 7, tag.Value)
	})

	t.Run("float", func(t *testing.T) {
		tag, err := Cast(40, " 2.5")
		require.NoError(t, err)
		assert.Equal(t, 2.5, tag.Value)
	})

	t.Run("structure tag is stripped", func(t *testing.T) {
		tag, err := Cast(0, "LINE  ")
		require.NoError(t, err)
		assert.Equal(t, "LINE", tag.Value)
	})

	t.Run("string keeps whitespace", func(t *testing.T) {
		tag, err := Cast(1, " text ")
		require.NoError(t, err)
		assert.Equal(t, " text ", tag.Value)
	})

	t.Run("binary", func(t *testing.T) {
		tag, err := Cast(310, "0AFF")
		require.NoError(t, err)
		assert.Equal(t, []byte{0x0A, 0xFF}, tag.Value)
		assert.Equal(t, "0AFF", tag.Str())
	})

	t.Run("invalid number", func(t *testing.T) {
		_, err := Cast(70, "abc")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrInvalidValue))
	})
}

func TestCastPoint(t *testing.T) {
	tag, err := CastPoint(10, "1", "2.5", "-3")
	require.NoError(t, err)
	assert.Equal(t, Vec3(1, 2.5, -3), tag.Value)

	tag, err = CastPoint(1010, "1", "2")
	require.NoError(t, err)
	p, ok := tag.Point()
	require.True(t, ok)
	assert.Equal(t, 2, p.Dims)

	_, err = CastPoint(10, "1")
	assert.True(t, errors.Is(err, errors.ErrInvalidValue))

	_, err = CastPoint(10, "1", "x")
	assert.True(t, errors.Is(err, errors.ErrInvalidValue))
}

func TestCoerce(t *testing.T) {
	v, err := Coerce(40, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = Coerce(290, true)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = Coerce(10, []float64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, Vec2(1, 2), v)

	_, err = Coerce(10, []float64{1})
	assert.Error(t, err)

	_, err = Coerce(8, 42)
	assert.Error(t, err)
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		0:           "0.0",
		1:           "1.0",
		-2.5:        "-2.5",
		0.1:         "0.1",
		123456789:   "123456789.0",
		1e-5:        "1e-05",
		1e16:        "1e+16",
		0.000123:    "0.000123",
		1234.000001: "1234.000001",
	}
	for f, want := range cases {
		assert.Equal(t, want, FormatFloat(f), "%v", f)
	}
}

func TestDXFString(t *testing.T) {
	assert.Equal(t, "  0\nLINE\n", New(0, "LINE").DXFString())
	assert.Equal(t, " 70\n1\n", New(70, 1).DXFString())
	assert.Equal(t, " 10\n1.0\n 20\n2.0\n 30\n3.0\n", NewPoint(10, 1, 2, 3).DXFString())
	assert.Equal(t, "1010\n1.0\n1020\n2.0\n", NewPoint(1010, 1, 2).DXFString())
}

func TestMarkers(t *testing.T) {
	assert.True(t, IsAppDataMarker(New(102, "{ACAD_REACTORS")))
	assert.False(t, IsAppDataMarker(New(102, "}")))
	assert.True(t, IsAppDataClose(New(102, "}")))
	assert.True(t, IsAppDataClose(New(102, "ACAD_REACTORS}")))
	assert.False(t, IsAppDataClose(New(102, "{ACAD_REACTORS")))
	assert.True(t, IsEmbeddedObjectMarker(New(101, "Embedded Object")))
	assert.Equal(t, "{ACAD", UniformAppID("ACAD"))
	assert.Equal(t, "{ACAD", UniformAppID("{ACAD"))
}

func TestTags(t *testing.T) {
	tags := MustParse("  0\nLINE\n  5\nFF\n  8\n0\n 10\n1\n 20\n2\n 30\n0\n")

	assert.Equal(t, "LINE", tags.DXFType())
	handle, ok := tags.Handle()
	require.True(t, ok)
	assert.Equal(t, "FF", handle)
	assert.True(t, tags.Has(10))
	assert.Equal(t, "0", tags.FirstValue(8, "X"))
	assert.Equal(t, "X", tags.FirstValue(6, "X"))
	assert.Len(t, tags, 4)

	require.NoError(t, tags.Update(New(8, "WALLS")))
	assert.Equal(t, "WALLS", tags.FirstValue(8, nil))
	assert.True(t, errors.IsNotFoundError(tags.Update(New(62, 1))))

	clone := tags.Clone()
	assert.True(t, clone.Equal(tags))
	clone[2] = New(8, "DOORS")
	assert.False(t, clone.Equal(tags))

	assert.Len(t, tags.RemoveCodes(5, 8), 2)
	assert.Len(t, tags.Expand(), 6)
}

func TestGroupBy(t *testing.T) {
	tags := Tags{New(1, "a"), New(1001, "APP1"), New(1000, "x"), New(1001, "APP2")}
	groups := tags.GroupBy(1001)
	require.Len(t, groups, 3)
	assert.Len(t, groups[1], 2)
	assert.Equal(t, "APP2", groups[2][0].Value)
}
