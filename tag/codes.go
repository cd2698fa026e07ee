package tag

import "strconv"

// Marker group codes
const (
	Structure      = 0   // entity/section type
	Handle         = 5   // primary handle
	DimStyleHandle = 105 // primary handle of DIMSTYLE table entries
	Subclass       = 100 // subclass name
	EmbeddedObject = 101 // "Embedded Object"
	AppData        = 102 // "{APPID" ... "}"
	Owner          = 330 // soft-pointer to owner
	XDict          = 360 // hard-owner of the extension dictionary
	Comment        = 999
	XDataMarker    = 1001 // application name of an xdata block
	XDataControl   = 1002 // "{" / "}" list brackets inside xdata
	XDataString    = 1000
	XDataBinary    = 1004
	XDataHandle    = 1005
	XDataFloat     = 1040
	XDataInt16     = 1070
	XDataInt32     = 1071

	MaxGroupCode = 1071
)

// EmbeddedObjectStr is the value of a (101, ...) embedded object marker
const EmbeddedObjectStr = "Embedded Object"

// Type is the semantic value type of a group code
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypePoint
	TypeBinary
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "<int>"
	case TypeFloat:
		return "<float>"
	case TypePoint:
		return "<point>"
	case TypeBinary:
		return "<bin>"
	default:
		return "<str>"
	}
}

// intKind is the storage width of integer codes in binary DXF
type intKind int

const (
	notInt intKind = iota
	int8Kind
	int16Kind
	int32Kind
	int64Kind
)

func in(code, lo, hi int) bool {
	return code >= lo && code < hi
}

// IsPointCode reports whether code starts a 2D/3D point (x at code, y at
// code+10, optional z at code+20)
func IsPointCode(code int) bool {
	return in(code, 10, 19) || in(code, 110, 113) || in(code, 210, 214) || in(code, 1010, 1014)
}

// IsInvalidPointCode reports y/z codes of xdata points that are invalid
// when they appear without their x tag
func IsInvalidPointCode(code int) bool {
	return in(code, 1020, 1024) || in(code, 1030, 1034)
}

// IsBinaryCode reports hex encoded binary chunks
func IsBinaryCode(code int) bool {
	return in(code, 310, 320) || code == XDataBinary
}

func intKindOf(code int) intKind {
	switch {
	case in(code, 290, 300):
		return int8Kind
	case in(code, 60, 80), in(code, 170, 180), in(code, 270, 290),
		in(code, 370, 390), in(code, 400, 410), in(code, 1060, 1071):
		return int16Kind
	case in(code, 90, 100), in(code, 420, 430), in(code, 440, 460), code == 1071:
		return int32Kind
	case in(code, 160, 170):
		return int64Kind
	}
	return notInt
}

// IsIntCode reports group codes with integer values (bool bytes included)
func IsIntCode(code int) bool {
	return intKindOf(code) != notInt
}

// IsFloatCode reports group codes with floating point values; includes the
// single coordinates of point codes
func IsFloatCode(code int) bool {
	return in(code, 10, 60) || in(code, 110, 150) || in(code, 210, 240) ||
		in(code, 460, 470) || in(code, 1010, 1060)
}

// TypeOf returns the value type of code. Unknown codes are strings.
func TypeOf(code int) Type {
	switch {
	case IsPointCode(code):
		return TypePoint
	case IsBinaryCode(code):
		return TypeBinary
	case IsFloatCode(code):
		return TypeFloat
	case IsIntCode(code):
		return TypeInt
	}
	return TypeString
}

// IsPointerCode reports handle references (320-369, 390-399, 480, 481, 1005)
func IsPointerCode(code int) bool {
	return in(code, 320, 370) || in(code, 390, 400) || code == 480 || code == 481 || code == XDataHandle
}

// IsTranslatablePointer reports pointers that are remapped when entities are
// copied between documents; 320-329 are taken as is
func IsTranslatablePointer(code int) bool {
	return IsPointerCode(code) && !in(code, 320, 330)
}

// IsSoftPointer reports soft-pointer codes (330-339, 1005)
func IsSoftPointer(code int) bool {
	return in(code, 330, 340) || code == XDataHandle
}

// IsHardPointer reports hard-pointer codes (340-349, 390-399, 480, 481)
func IsHardPointer(code int) bool {
	return in(code, 340, 350) || in(code, 390, 400) || in(code, 480, 482)
}

// IsSoftOwner reports soft-owner codes (350-359)
func IsSoftOwner(code int) bool {
	return in(code, 350, 360)
}

// IsHardOwner reports hard-owner codes (360-369)
func IsHardOwner(code int) bool {
	return in(code, 360, 370)
}

// IsHandleCode reports primary handle codes (5, 105)
func IsHandleCode(code int) bool {
	return code == Handle || code == DimStyleHandle
}

// IsValidXDataCode reports group codes allowed inside xdata blocks
func IsValidXDataCode(code int) bool {
	switch code {
	case 1000, 1001, 1002, 1003, 1004, 1005, 1010, 1011, 1012, 1013,
		1040, 1041, 1042, 1070, 1071:
		return true
	}
	return false
}

// XCodeFor returns the xdata group code able to store a value of code
func XCodeFor(code int) int {
	switch {
	case IsHandleCode(code) || IsPointerCode(code):
		return XDataHandle
	case IsBinaryCode(code):
		return XDataBinary
	case IsIntCode(code):
		return XDataInt16
	case IsFloatCode(code):
		return XDataFloat
	}
	return XDataString
}

// IsValidHandle reports whether s is a hex string
func IsValidHandle(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 16, 64)
	return err == nil
}
