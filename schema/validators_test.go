package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/dxfcore/tag"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		check Validator
		valid []interface{}
		fails []interface{}
	}{
		{"int range", IsInIntRange(0, 4), []interface{}{0, 3}, []interface{}{-1, 4, "1"}},
		{"float range", IsInFloatRange(0, 1), []interface{}{0.0, 1.0, 1}, []interface{}{-0.1, 1.1}},
		{"integer bool", IsIntegerBool, []interface{}{0, 1}, []interface{}{2, -1, true}},
		{"bitmask", IsValidBitmask(0b101), []interface{}{0, 1, 4, 5}, []interface{}{2, 7}},
		{"one of", IsOneOf(1, 2, 4), []interface{}{1, 4}, []interface{}{3}},
		{"positive", IsPositive, []interface{}{0.1, 1}, []interface{}{0.0, -1.0, "1"}},
		{"not negative", IsNotNegative, []interface{}{0.0, 2}, []interface{}{-0.5}},
		{"not zero", IsNotZero, []interface{}{1e-6, -2.0}, []interface{}{0.0, 1e-13}},
		{"not null vector", IsNotNullVector, []interface{}{tag.Vec3(0, 0, 1)}, []interface{}{tag.Vec3(0, 0, 0), tag.Vec2(0, 0), 1.0}},
		{"aci color", IsValidACIColor, []interface{}{0, 7, 256, 257}, []interface{}{-1, 258}},
		{"lineweight", IsValidLineweight, []interface{}{-3, -2, -1, 0, 13, 211}, []interface{}{-4, 14, 212, 1.0}},
		{"transparency", IsTransparency, []interface{}{TransparencyByBlock, 0x020000FF}, []interface{}{0, 255}},
		{"handle", IsHandle, []interface{}{"FF", "1a"}, []interface{}{"", "XYZ", 1}},
		{"table name", IsValidTableName, []interface{}{"Layer 1", `\U+00E4name`}, []interface{}{"a<b", "a:b", "a*", "x=y", 1}},
		{"layer name", IsValidLayerName, []interface{}{"0", "*ADSK_SYSTEM", "*acmap_x", "*TEMPORARY"}, []interface{}{"*OTHER", "a?b"}},
		{"one line text", IsOneLineText, []interface{}{"abc", ""}, []interface{}{"a\nb", "a\rb", "abc^"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range tt.valid {
				assert.True(t, tt.check(v), "%v should be valid", v)
			}
			for _, v := range tt.fails {
				assert.False(t, tt.check(v), "%v should be invalid", v)
			}
		})
	}
}

func TestFixers(t *testing.T) {
	assert.Equal(t, 0, FitIntoIntRange(0, 4)(-3))
	assert.Equal(t, 3, FitIntoIntRange(0, 4)(9))
	assert.Equal(t, 2, FitIntoIntRange(0, 4)(2))
	assert.Equal(t, 1.0, FitIntoFloatRange(0, 1)(7.5))
	assert.Equal(t, 0.0, FitIntoFloatRange(0, 1)(-2))
	assert.Equal(t, 1, FixIntegerBool(5))
	assert.Equal(t, 0, FixIntegerBool(0))
	assert.Equal(t, 5, FixBitmask(0b101)(7))
	assert.Equal(t, "ab", FixOneLineText("a\r\nb^^"))
}

func TestFixLineweight(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, -1},
		{-2, -2},
		{-3, -3},
		{-5, LineweightByLayer},
		{0, 0},
		{1, 5},
		{14, 15},
		{15, 15},
		{107, 120},
		{211, 211},
		{300, 211},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FixLineweight(tt.in), "lineweight %d", tt.in)
	}
}
