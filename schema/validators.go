package schema

import (
	"math"
	"slices"
	"strings"

	"github.com/teranos/dxfcore/tag"
)

// Lineweight constants in 1/100 mm
const (
	LineweightByLayer = -1
	LineweightByBlock = -2
	LineweightDefault = -3
)

// ValidLineweights lists the standard lineweights, ascending
var ValidLineweights = []int{0, 5, 9, 13, 15, 18, 20, 25, 30, 35, 40, 50, 53, 60, 70, 80, 90, 100, 106, 120, 140, 158, 200, 211}

// TransparencyByBlock is the DXF transparency value "BYBLOCK"
const TransparencyByBlock = 0x01000000

const invalidNameChars = "<>/\\\":;?*=`"

func asInt(v interface{}) (int, bool) {
	i, ok := v.(int)
	return i, ok
}

func asFloat(v interface{}) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	}
	return 0, false
}

// IsInIntRange accepts integers in [start, end)
func IsInIntRange(start, end int) Validator {
	return func(v interface{}) bool {
		i, ok := asInt(v)
		return ok && i >= start && i < end
	}
}

// FitIntoIntRange clamps integers into [start, end)
func FitIntoIntRange(start, end int) Fixer {
	return func(v interface{}) interface{} {
		i, _ := asInt(v)
		return min(max(i, start), end-1)
	}
}

// IsInFloatRange accepts numbers in [start, end]
func IsInFloatRange(start, end float64) Validator {
	return func(v interface{}) bool {
		f, ok := asFloat(v)
		return ok && f >= start && f <= end
	}
}

// FitIntoFloatRange clamps numbers into [start, end]
func FitIntoFloatRange(start, end float64) Fixer {
	return func(v interface{}) interface{} {
		f, _ := asFloat(v)
		return math.Min(math.Max(f, start), end)
	}
}

// IsIntegerBool accepts 0 and 1
func IsIntegerBool(v interface{}) bool {
	i, ok := asInt(v)
	return ok && (i == 0 || i == 1)
}

// FixIntegerBool maps non-zero values to 1
func FixIntegerBool(v interface{}) interface{} {
	if i, ok := asInt(v); ok && i != 0 {
		return 1
	}
	return 0
}

// IsValidBitmask accepts integers without bits outside of mask
func IsValidBitmask(mask int) Validator {
	return func(v interface{}) bool {
		i, ok := asInt(v)
		return ok && i&^mask == 0
	}
}

// FixBitmask clears all bits outside of mask
func FixBitmask(mask int) Fixer {
	return func(v interface{}) interface{} {
		i, _ := asInt(v)
		return i & mask
	}
}

// IsOneOf accepts the listed values
func IsOneOf(values ...interface{}) Validator {
	return func(v interface{}) bool {
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

// IsPositive accepts numbers > 0
func IsPositive(v interface{}) bool {
	f, ok := asFloat(v)
	return ok && f > 0
}

// IsNotNegative accepts numbers >= 0
func IsNotNegative(v interface{}) bool {
	f, ok := asFloat(v)
	return ok && f >= 0
}

// IsNotZero accepts numbers not close to 0
func IsNotZero(v interface{}) bool {
	f, ok := asFloat(v)
	return ok && math.Abs(f) > 1e-12
}

// IsNotNullVector accepts points which are not (0, 0, 0)
func IsNotNullVector(v interface{}) bool {
	p, ok := v.(tag.Point)
	return ok && !p.Close(tag.Point{}, 1e-12)
}

// IsValidACIColor accepts AutoCAD color indices including BYBLOCK (0),
// BYLAYER (256) and BYOBJECT (257)
func IsValidACIColor(v interface{}) bool {
	i, ok := asInt(v)
	return ok && i >= 0 && i <= 257
}

// IsValidLineweight accepts standard lineweights and the BYLAYER, BYBLOCK
// and DEFAULT values
func IsValidLineweight(v interface{}) bool {
	i, ok := asInt(v)
	if !ok {
		return false
	}
	if i == LineweightByLayer || i == LineweightByBlock || i == LineweightDefault {
		return true
	}
	_, found := slices.BinarySearch(ValidLineweights, i)
	return found
}

// FixLineweight returns the next valid lineweight
func FixLineweight(v interface{}) interface{} {
	i, _ := asInt(v)
	if IsValidLineweight(i) {
		return i
	}
	if i < LineweightDefault {
		return LineweightByLayer
	}
	if i > ValidLineweights[len(ValidLineweights)-1] {
		return ValidLineweights[len(ValidLineweights)-1]
	}
	index, _ := slices.BinarySearch(ValidLineweights, i)
	return ValidLineweights[index]
}

// IsTransparency accepts BYBLOCK and values with the 0x02000000 flag
func IsTransparency(v interface{}) bool {
	i, ok := asInt(v)
	return ok && (i == TransparencyByBlock || i&0x02000000 != 0)
}

// IsHandle accepts hex strings
func IsHandle(v interface{}) bool {
	s, ok := v.(string)
	return ok && tag.IsValidHandle(s)
}

// IsValidTableName accepts names without the characters DXF forbids in
// symbol table and dictionary names
func IsValidTableName(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	if strings.Contains(s, "\\") {
		s = strings.ReplaceAll(s, `\U+`, "")
		s = strings.ReplaceAll(s, `\M+`, "")
	}
	return !strings.ContainsAny(s, invalidNameChars)
}

// IsValidLayerName accepts table names and the special Autodesk layers
// starting with "*ADSK_", "*ACMAP" or "*TEMPORARY"
func IsValidLayerName(v interface{}) bool {
	if s, ok := v.(string); ok && strings.HasPrefix(s, "*") {
		upper := strings.ToUpper(s)
		for _, prefix := range []string{"*ADSK_", "*ACMAP", "*TEMPORARY"} {
			if strings.HasPrefix(upper, prefix) {
				return true
			}
		}
	}
	return IsValidTableName(v)
}

// IsOneLineText accepts strings without line breaks and without trailing
// "^"
func IsOneLineText(v interface{}) bool {
	s, ok := v.(string)
	return ok && !strings.ContainsAny(s, "\r\n") && !strings.HasSuffix(s, "^")
}

// FixOneLineText removes line breaks and trailing "^"
func FixOneLineText(v interface{}) interface{} {
	s, _ := v.(string)
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	return strings.TrimRight(s, "^")
}
