package schema

import "github.com/teranos/dxfcore/version"

// BaseClass is the leading subclass of every entity type. Handle and owner
// are bound by the entity loader, not by the tag mapping.
var BaseClass = Subclass{
	Attrs: []Attr{
		{Name: "handle", Code: 5, Ignore: true},
		// not written to DXF R12
		{Name: "owner", Code: 330, Ignore: true},
	},
}

// AcDbEntity holds the common attributes of graphical entities
var AcDbEntity = Def("AcDbEntity",
	// invalid names are kept, renaming could break references
	Attr{Name: "layer", Code: 8, Default: "0", Validator: IsValidLayerName, Recovery: RecoverKeepRaw},
	Attr{Name: "linetype", Code: 6, Default: "BYLAYER", Optional: true, Validator: IsValidTableName, Recovery: RecoverKeepRaw},
	// BYBLOCK=0, BYLAYER=256, BYOBJECT=257
	Attr{Name: "color", Code: 62, Default: 256, Optional: true, Validator: IsValidACIColor, Recovery: RecoverDefault},
	// modelspace=0, paperspace=1
	Attr{Name: "paperspace", Code: 67, Default: 0, Optional: true, Validator: IsIntegerBool, Recovery: RecoverDefault},
	// 1/100 mm, BYLAYER=-1, BYBLOCK=-2, DEFAULT=-3
	Attr{Name: "lineweight", Code: 370, Default: LineweightByLayer, MinVersion: version.R2000, Optional: true,
		Validator: IsValidLineweight, Fixer: FixLineweight, Recovery: RecoverFix},
	Attr{Name: "ltscale", Code: 48, Default: 1.0, MinVersion: version.R2000, Optional: true, Validator: IsPositive, Recovery: RecoverDefault},
	Attr{Name: "invisible", Code: 60, Default: 0, MinVersion: version.R2000, Optional: true},
	// 0x00RRGGBB, overrides color
	Attr{Name: "true_color", Code: 420, MinVersion: version.R2004, Optional: true},
	Attr{Name: "color_name", Code: 430, MinVersion: version.R2004, Optional: true},
	// 0x020000TT, unset means BYLAYER
	Attr{Name: "transparency", Code: 440, MinVersion: version.R2004, Optional: true, Validator: IsTransparency},
	Attr{Name: "shadow_mode", Code: 284, MinVersion: version.R2007, Optional: true},
	Attr{Name: "material_handle", Code: 347, MinVersion: version.R2007, Optional: true},
	Attr{Name: "visualstyle_handle", Code: 348, MinVersion: version.R2007, Optional: true},
	Attr{Name: "plotstyle_enum", Code: 380, Default: 1, MinVersion: version.R2007, Optional: true},
	Attr{Name: "plotstyle_handle", Code: 390, MinVersion: version.R2007, Optional: true},
)

// GraphicAttributeCodes maps AcDbEntity group codes to attribute names.
// Some writers put these tags into later subclasses; the loader recovers
// them.
var GraphicAttributeCodes = map[int]string{
	8:   "layer",
	6:   "linetype",
	62:  "color",
	67:  "paperspace",
	370: "lineweight",
	48:  "ltscale",
	60:  "invisible",
	420: "true_color",
	430: "color_name",
	440: "transparency",
	284: "shadow_mode",
	347: "material_handle",
	348: "visualstyle_handle",
	380: "plotstyle_enum",
	390: "plotstyle_handle",
}
