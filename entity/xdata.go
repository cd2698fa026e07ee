package entity

import (
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

var (
	openList  = tag.Tag{Code: tag.XDataControl, Value: "{"}
	closeList = tag.Tag{Code: tag.XDataControl, Value: "}"}
)

// XData stores extended data by APPID in insertion order. Each entry
// starts with the (1001, APPID) tag.
type XData struct {
	appids []string
	data   map[string]tag.Tags
}

// NewXData creates an empty store
func NewXData() *XData {
	return &XData{data: make(map[string]tag.Tags)}
}

// xdataFromBlock loads the xdata groups of a classified block. Groups with
// group codes outside of the xdata range are dropped and counted.
func xdataFromBlock(groups []tag.Tags) (*XData, int) {
	x := NewXData()
	dropped := 0
	for _, data := range groups {
		if len(data) == 0 || data[0].Code != tag.XDataMarker {
			dropped++
			continue
		}
		if err := checkXDataCodes(data[1:]); err != nil {
			dropped++
			continue
		}
		appid := data[0].Str()
		if _, exists := x.data[appid]; !exists {
			x.appids = append(x.appids, appid)
		}
		x.data[appid] = data.Clone()
	}
	return x, dropped
}

func checkXDataCodes(content tag.Tags) error {
	for _, t := range content {
		if t.Code == tag.XDataMarker || !tag.IsValidXDataCode(t.Code) {
			return errors.Wrapf(errors.ErrInvalidValue, "invalid xdata group code %d", t.Code)
		}
	}
	return nil
}

// Len returns the count of APPIDs
func (x *XData) Len() int {
	return len(x.appids)
}

// AppIDs returns the APPIDs in insertion order
func (x *XData) AppIDs() []string {
	return append([]string(nil), x.appids...)
}

// Has reports xdata for appid
func (x *XData) Has(appid string) bool {
	_, ok := x.data[appid]
	return ok
}

// Get returns a copy of the xdata for appid without the (1001, appid) tag
func (x *XData) Get(appid string) (tag.Tags, error) {
	data, ok := x.data[appid]
	if !ok {
		return nil, errors.NewNotFoundError("xdata for APPID %q", appid)
	}
	return data[1:].Clone(), nil
}

// Set replaces the xdata for appid. content must not contain the
// (1001, appid) tag and only xdata group codes.
func (x *XData) Set(appid string, content tag.Tags) error {
	if appid == "" {
		return errors.Wrap(errors.ErrInvalidValue, "empty xdata APPID")
	}
	if err := checkXDataCodes(content); err != nil {
		return errors.Wrapf(err, "xdata for APPID %q", appid)
	}
	data := make(tag.Tags, 0, len(content)+1)
	data = append(data, tag.Tag{Code: tag.XDataMarker, Value: appid})
	data = append(data, content...)
	if _, exists := x.data[appid]; !exists {
		x.appids = append(x.appids, appid)
	}
	x.data[appid] = data
	return nil
}

// Discard removes the xdata for appid if present
func (x *XData) Discard(appid string) {
	if _, ok := x.data[appid]; !ok {
		return
	}
	delete(x.data, appid)
	for i, id := range x.appids {
		if id == appid {
			x.appids = append(x.appids[:i], x.appids[i+1:]...)
			break
		}
	}
}

// HasList reports the named list name in the xdata for appid
func (x *XData) HasList(appid, name string) bool {
	data, ok := x.data[appid]
	if !ok {
		return false
	}
	start, _, err := findList(data, name)
	return err == nil && start >= 0
}

// GetList returns the content of the named list without the name and the
// list brackets
func (x *XData) GetList(appid, name string) (tag.Tags, error) {
	data, ok := x.data[appid]
	if !ok {
		return nil, errors.NewNotFoundError("xdata for APPID %q", appid)
	}
	start, end, err := findList(data, name)
	if err != nil {
		return nil, err
	}
	if start < 0 {
		return nil, errors.NewNotFoundError("xdata list %q for APPID %q", name, appid)
	}
	return data[start+2 : end-1].Clone(), nil
}

// SetList replaces or appends the named list, creates the xdata for appid
// if required
func (x *XData) SetList(appid, name string, content tag.Tags) error {
	if err := checkXDataCodes(content); err != nil {
		return errors.Wrapf(err, "xdata list %q", name)
	}
	data, ok := x.data[appid]
	if !ok {
		return x.Set(appid, xdataList(name, content))
	}
	start, end, err := findList(data, name)
	if err != nil {
		return err
	}
	var out tag.Tags
	if start < 0 {
		out = append(data[1:].Clone(), xdataList(name, content)...)
	} else {
		out = append(out, data[1:start]...)
		out = append(out, xdataList(name, content)...)
		out = append(out, data[end:]...)
	}
	return x.Set(appid, out)
}

// ReplaceList replaces an existing named list
func (x *XData) ReplaceList(appid, name string, content tag.Tags) error {
	if !x.HasList(appid, name) {
		return errors.NewNotFoundError("xdata list %q for APPID %q", name, appid)
	}
	return x.SetList(appid, name, content)
}

// DiscardList removes the named list if present
func (x *XData) DiscardList(appid, name string) {
	data, ok := x.data[appid]
	if !ok {
		return
	}
	start, end, err := findList(data, name)
	if err != nil || start < 0 {
		return
	}
	out := append(data[:start].Clone(), data[end:]...)
	x.data[appid] = out
}

func xdataList(name string, content tag.Tags) tag.Tags {
	out := make(tag.Tags, 0, len(content)+3)
	out = append(out, tag.Tag{Code: tag.XDataString, Value: name}, openList)
	out = append(out, content...)
	return append(out, closeList)
}

// findList returns the index range [start, end) of the named list
// (1000, name) (1002, "{") ... (1002, "}"). Nested lists are part of the
// content. start is -1 if the list does not exist.
func findList(data tag.Tags, name string) (int, int, error) {
	for i := 0; i+1 < len(data); i++ {
		t := data[i]
		if t.Code != tag.XDataString || t.Value != name || !data[i+1].Equal(openList) {
			continue
		}
		level := 0
		for j := i + 1; j < len(data); j++ {
			switch {
			case data[j].Equal(openList):
				level++
			case data[j].Equal(closeList):
				level--
			}
			if level == 0 {
				return i, j + 1, nil
			}
		}
		return -1, -1, errors.NewStructureError("invalid xdata structure: missing (1002, \"}\") of list %q", name)
	}
	return -1, -1, nil
}

func (x *XData) clone() *XData {
	c := NewXData()
	for _, appid := range x.appids {
		c.appids = append(c.appids, appid)
		c.data[appid] = x.data[appid].Clone()
	}
	return c
}

// Export writes all xdata
func (x *XData) Export(w tag.Writer) error {
	for _, appid := range x.appids {
		if err := tag.WriteTags(w, x.data[appid]); err != nil {
			return err
		}
	}
	return nil
}
