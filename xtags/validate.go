package xtags

import (
	"strings"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

// ValidateStructure checks the flat tag stream of one entity:
//   - application data can not be nested and every (102, "{APPID") tag
//     needs a closing (102, "}") or (102, "APPID}") tag
//   - xdata starts with (1001, APPID) and is always at the end of the
//     entity, only xdata group codes are allowed after it
//   - (1002, "{") and (1002, "}") list markers are balanced
//   - embedded objects are not checked
//
// (102, ...) tags of XRECORD entities are payload and not checked.
func ValidateStructure(tags tag.Tags) error {
	if len(tags) == 0 {
		return nil
	}
	name := entityName(tags)
	isXRecord := tags.DXFType() == "XRECORD"

	var (
		inAppData bool
		inXData   bool
		level     int
		closing   = "}"
	)
	for _, t := range tags {
		if tag.IsEmbeddedObjectMarker(t) {
			break
		}

		if inXData {
			if tag.IsInvalidPointCode(t.Code) {
				return errors.NewStructureError("invalid xdata structure in %s, coordinate %d without x-axis", name, t.Code)
			}
			if !tag.IsValidXDataCode(t.Code) {
				return errors.NewStructureError("invalid xdata structure in %s, group code %d not allowed in xdata", name, t.Code)
			}
			if t.Code == tag.XDataControl {
				switch t.Str() {
				case "{":
					level++
				case "}":
					level--
				default:
					return errors.NewStructureError("invalid xdata control string %s in %s", t, name)
				}
				if level < 0 {
					return errors.NewStructureError("unbalanced xdata list markers in %s, missing (1002, \"{\")", name)
				}
			}
		}

		if t.Code == tag.AppData && !isXRecord {
			value, _ := t.Value.(string)
			switch {
			case strings.HasPrefix(value, "{"):
				if inAppData {
					return errors.NewStructureError("invalid appdata structure in %s, appdata can not be nested", name)
				}
				inAppData = true
				closing = value[1:] + "}"
			case value == "}" || value == closing:
				if !inAppData {
					return errors.NewStructureError("invalid appdata structure in %s, closing tag without opening tag", name)
				}
				inAppData = false
				closing = "}"
			default:
				return errors.NewStructureError("invalid appdata structure tag %s in %s", t, name)
			}
		}

		if t.Code == tag.XDataMarker && !inXData {
			if inAppData {
				return errors.NewStructureError("invalid appdata structure in %s, missing closing (102, \"}\")", name)
			}
			inXData = true
		}
	}

	if inAppData {
		return errors.NewStructureError("invalid appdata structure in %s, missing closing (102, \"}\")", name)
	}
	if level > 0 {
		return errors.NewStructureError("unbalanced xdata list markers in %s, missing (1002, \"}\")", name)
	}
	return nil
}
