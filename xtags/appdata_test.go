package xtags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

func TestAppData(t *testing.T) {
	b, err := Classify(layerTags())
	require.NoError(t, err)

	assert.True(t, b.HasAppData("{ACAD_XDICTIONARY"))
	assert.False(t, b.HasAppData("{ACAD_REACTORS"))

	content, err := b.AppDataContent("{ACAD_XDICTIONARY")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(360, "63D5")}, content)

	require.NoError(t, b.SetAppDataContent("{ACAD_XDICTIONARY", tag.Tags{tag.New(360, "ABBA")}))
	data, err := b.GetAppData("{ACAD_XDICTIONARY")
	require.NoError(t, err)
	assert.Equal(t, tag.New(360, "ABBA"), data[1])
	assert.Len(t, data, 3)

	_, err = b.GetAppData("{NOPE")
	assert.True(t, errors.IsNotFoundError(err))
	assert.True(t, errors.IsNotFoundError(b.SetAppDataContent("{NOPE", nil)))
}

func TestNewAppData(t *testing.T) {
	b, err := Classify(layerTags())
	require.NoError(t, err)

	_, err = b.NewAppData("ACAD_REACTORS", nil, "")
	assert.True(t, errors.Is(err, errors.ErrInvalidValue))

	_, err = b.NewAppData("{ACAD_REACTORS", tag.Tags{tag.New(330, "18")}, "")
	require.NoError(t, err)
	assert.Equal(t, tag.New(102, AppDataRef(1)), b.Base[len(b.Base)-1])

	_, err = b.NewAppData("{DXFCORE", nil, "AcDbLayerTableRecord")
	require.NoError(t, err)
	sc := b.Subclasses[1].Tags
	assert.Equal(t, tag.New(102, AppDataRef(2)), sc[len(sc)-1])

	_, err = b.NewAppData("{DXFCORE", nil, "AcDbMissing")
	assert.True(t, errors.Is(err, errors.ErrSubclassNotFound))

	flat := b.Serialize()
	reclassified, err := Classify(flat)
	require.NoError(t, err)
	assert.Len(t, reclassified.AppData, 3)
}

func TestXData(t *testing.T) {
	b := MustParse("  0\nLINE\n")
	assert.False(t, b.HasXData("DXFCORE"))

	b.NewXData("DXFCORE", tag.Tags{tag.New(1000, "a")})
	assert.True(t, b.HasXData("DXFCORE"))

	require.NoError(t, b.SetXData("DXFCORE", tag.Tags{tag.New(1040, 1.5)}))
	data, err := b.GetXData("DXFCORE")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(1001, "DXFCORE"), tag.New(1040, 1.5)}, data)

	assert.True(t, errors.IsNotFoundError(b.SetXData("ACAD", nil)))
}

func TestValidateStructure(t *testing.T) {
	valid := append(layerTags(),
		tag.New(1001, "DXFCORE"),
		tag.New(1002, "{"),
		tag.New(1000, "x"),
		tag.New(1002, "}"),
	)
	assert.NoError(t, ValidateStructure(valid))

	tests := []struct {
		name string
		tags tag.Tags
	}{
		{"nested appdata", tag.Tags{
			tag.New(0, "LINE"), tag.New(102, "{A"), tag.New(102, "{B"), tag.New(102, "}"), tag.New(102, "}"),
		}},
		{"closing without opening", tag.Tags{tag.New(0, "LINE"), tag.New(102, "}")}},
		{"unclosed appdata", tag.Tags{tag.New(0, "LINE"), tag.New(102, "{A")}},
		{"unclosed appdata before xdata", tag.Tags{tag.New(0, "LINE"), tag.New(102, "{A"), tag.New(1001, "APP")}},
		{"invalid appdata tag", tag.Tags{tag.New(0, "LINE"), tag.New(102, "XYZ")}},
		{"non-xdata code in xdata", tag.Tags{tag.New(0, "LINE"), tag.New(1001, "APP"), tag.New(8, "0")}},
		{"misplaced xdata coordinate", tag.Tags{tag.New(0, "LINE"), tag.New(1001, "APP"), tag.New(1020, 1.0)}},
		{"invalid control string", tag.Tags{tag.New(0, "LINE"), tag.New(1001, "APP"), tag.New(1002, "[")}},
		{"missing list opening", tag.Tags{tag.New(0, "LINE"), tag.New(1001, "APP"), tag.New(1002, "}")}},
		{"missing list closing", tag.Tags{tag.New(0, "LINE"), tag.New(1001, "APP"), tag.New(1002, "{")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStructure(tt.tags)
			require.Error(t, err)
			assert.True(t, errors.IsStructureError(err))
		})
	}
}

func TestValidateStructure_Exceptions(t *testing.T) {
	xrecord := tag.Tags{
		tag.New(0, "XRECORD"),
		tag.New(100, "AcDbXrecord"),
		tag.New(102, "payload"),
	}
	assert.NoError(t, ValidateStructure(xrecord))

	embedded := tag.Tags{
		tag.New(0, "MTEXT"),
		tag.New(101, "Embedded Object"),
		tag.New(102, "{unchecked"),
	}
	assert.NoError(t, ValidateStructure(embedded))
	assert.NoError(t, ValidateStructure(nil))
}
