package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

func TestAppData_SetAddsBrackets(t *testing.T) {
	a := NewAppData()
	a.Set("MYAPP", tag.Tags{tag.New(1, "x")})

	data, err := a.Get("{MYAPP")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{
		tag.New(102, "{MYAPP"),
		tag.New(1, "x"),
		tag.New(102, "}"),
	}, data)

	content, err := a.Content("MYAPP")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(1, "x")}, content)

	// content is a copy
	content[0] = tag.New(1, "changed")
	again, _ := a.Content("MYAPP")
	assert.Equal(t, "x", again[0].Str())
}

func TestAppData_OrderAndDiscard(t *testing.T) {
	a := NewAppData()
	a.Set("B", nil)
	a.Set("A", nil)
	a.Set("B", tag.Tags{tag.New(1, "y")})

	assert.Equal(t, []string{"{B", "{A"}, a.AppIDs())

	a.Discard("B")
	assert.False(t, a.Has("B"))
	assert.Equal(t, 1, a.Len())

	_, err := a.Get("B")
	assert.True(t, errors.IsNotFoundError(err))

	c := tag.NewCollector(tag.DefaultWriterOptions())
	require.NoError(t, a.Export(c))
	assert.Equal(t, tag.Tags{tag.New(102, "{A"), tag.New(102, "}")}, c.Tags())
}

func TestReactors(t *testing.T) {
	r := NewReactors("1f", "A", "100")
	r.Add("a")
	assert.Equal(t, 3, r.Len())
	assert.True(t, r.Has("1F"))
	assert.Equal(t, []string{"A", "1F", "100"}, r.Handles())

	r.Discard("100")
	c := tag.NewCollector(tag.DefaultWriterOptions())
	require.NoError(t, r.Export(c))
	assert.Equal(t, tag.Tags{
		tag.New(102, "{ACAD_REACTORS"),
		tag.New(330, "A"),
		tag.New(330, "1F"),
		tag.New(102, "}"),
	}, c.Tags())
}

func TestXData_SetGet(t *testing.T) {
	x := NewXData()
	require.NoError(t, x.Set("ACAD", tag.Tags{tag.New(1000, "a"), tag.New(1040, 1.5)}))

	data, err := x.Get("ACAD")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(1000, "a"), tag.New(1040, 1.5)}, data)

	err = x.Set("ACAD", tag.Tags{tag.New(1, "not xdata")})
	assert.True(t, errors.Is(err, errors.ErrInvalidValue))
	err = x.Set("ACAD", tag.Tags{tag.New(1001, "nested appid")})
	assert.True(t, errors.Is(err, errors.ErrInvalidValue))
	err = x.Set("", nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidValue))

	_, err = x.Get("OTHER")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestXData_FromBlockDropsInvalidGroups(t *testing.T) {
	x, dropped := xdataFromBlock([]tag.Tags{
		{tag.New(1001, "GOOD"), tag.New(1000, "ok")},
		{tag.New(1001, "BAD"), tag.New(70, 1)},
	})
	assert.Equal(t, 1, dropped)
	assert.Equal(t, []string{"GOOD"}, x.AppIDs())
}

func TestXData_Lists(t *testing.T) {
	x := NewXData()
	require.NoError(t, x.SetList("APP", "COLORS", tag.Tags{tag.New(1070, 1), tag.New(1070, 2)}))
	require.NoError(t, x.SetList("APP", "NAMES", tag.Tags{tag.New(1000, "a")}))

	assert.True(t, x.HasList("APP", "COLORS"))
	colors, err := x.GetList("APP", "COLORS")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{tag.New(1070, 1), tag.New(1070, 2)}, colors)

	// replace keeps the other list
	require.NoError(t, x.ReplaceList("APP", "COLORS", tag.Tags{tag.New(1070, 3)}))
	data, err := x.Get("APP")
	require.NoError(t, err)
	assert.Equal(t, tag.Tags{
		tag.New(1000, "COLORS"), tag.New(1002, "{"), tag.New(1070, 3), tag.New(1002, "}"),
		tag.New(1000, "NAMES"), tag.New(1002, "{"), tag.New(1000, "a"), tag.New(1002, "}"),
	}, data)

	err = x.ReplaceList("APP", "MISSING", nil)
	assert.True(t, errors.IsNotFoundError(err))

	x.DiscardList("APP", "COLORS")
	assert.False(t, x.HasList("APP", "COLORS"))
	assert.True(t, x.HasList("APP", "NAMES"))
}

func TestXData_NestedAndUnclosedLists(t *testing.T) {
	x := NewXData()
	nested := tag.Tags{
		tag.New(1002, "{"), tag.New(1000, "inner"), tag.New(1002, "}"),
		tag.New(1070, 5),
	}
	require.NoError(t, x.SetList("APP", "OUTER", nested))
	got, err := x.GetList("APP", "OUTER")
	require.NoError(t, err)
	assert.Equal(t, nested, got)

	require.NoError(t, x.Set("BROKEN", tag.Tags{tag.New(1000, "L"), tag.New(1002, "{"), tag.New(1070, 1)}))
	_, err = x.GetList("BROKEN", "L")
	assert.True(t, errors.IsStructureError(err))
}

func TestBase_XDataAccessors(t *testing.T) {
	e := newCircle(t)
	b := e.(*Generic)

	_, err := b.GetXData("ACAD")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, b.SetXDataList("ACAD", "DATA", tag.Tags{tag.New(1040, 2.0)}))
	assert.True(t, b.HasXData("ACAD"))
	assert.True(t, b.HasXDataList("ACAD", "DATA"))

	b.DiscardXDataList("ACAD", "DATA")
	assert.False(t, b.HasXDataList("ACAD", "DATA"))

	b.DiscardXData("ACAD")
	assert.False(t, b.HasXData("ACAD"))
}
