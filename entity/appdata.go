package entity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

// Reserved application data names
const (
	AcadReactors    = "{ACAD_REACTORS"
	AcadXDictionary = "{ACAD_XDICTIONARY"
)

// AppData stores application defined data by appid in insertion order.
// Each entry includes the (102, "{APPID") and (102, "}") brackets.
type AppData struct {
	appids []string
	data   map[string]tag.Tags
}

// NewAppData creates an empty store
func NewAppData() *AppData {
	return &AppData{data: make(map[string]tag.Tags)}
}

// Len returns the count of appids
func (a *AppData) Len() int {
	return len(a.appids)
}

// Has reports data for appid, with or without leading "{"
func (a *AppData) Has(appid string) bool {
	_, ok := a.data[tag.UniformAppID(appid)]
	return ok
}

// Get returns the data for appid including the brackets
func (a *AppData) Get(appid string) (tag.Tags, error) {
	data, ok := a.data[tag.UniformAppID(appid)]
	if !ok {
		return nil, errors.NewNotFoundError("application data %q", appid)
	}
	return data, nil
}

// Content returns a copy of the data for appid without the brackets
func (a *AppData) Content(appid string) (tag.Tags, error) {
	data, err := a.Get(appid)
	if err != nil {
		return nil, err
	}
	return data[1 : len(data)-1].Clone(), nil
}

// Set stores content for appid; missing brackets are added
func (a *AppData) Set(appid string, content tag.Tags) {
	appid = tag.UniformAppID(appid)
	data := make(tag.Tags, 0, len(content)+2)
	if len(content) == 0 || content[0].Code != tag.AppData || content[0].Value != appid {
		data = append(data, tag.Tag{Code: tag.AppData, Value: appid})
	}
	data = append(data, content...)
	if last := data[len(data)-1]; len(data) == 1 || !tag.IsAppDataClose(last) {
		data = append(data, tag.Tag{Code: tag.AppData, Value: "}"})
	}
	if _, exists := a.data[appid]; !exists {
		a.appids = append(a.appids, appid)
	}
	a.data[appid] = data
}

// Discard removes the data for appid if present
func (a *AppData) Discard(appid string) {
	appid = tag.UniformAppID(appid)
	if _, ok := a.data[appid]; !ok {
		return
	}
	delete(a.data, appid)
	for i, id := range a.appids {
		if id == appid {
			a.appids = append(a.appids[:i], a.appids[i+1:]...)
			break
		}
	}
}

// AppIDs returns the appids in insertion order
func (a *AppData) AppIDs() []string {
	return append([]string(nil), a.appids...)
}

func (a *AppData) clone() *AppData {
	c := NewAppData()
	for _, appid := range a.appids {
		c.appids = append(c.appids, appid)
		c.data[appid] = a.data[appid].Clone()
	}
	return c
}

// Export writes all application data
func (a *AppData) Export(w tag.Writer) error {
	for _, appid := range a.appids {
		if err := tag.WriteTags(w, a.data[appid]); err != nil {
			return err
		}
	}
	return nil
}

// Reactors is the set of soft-pointer handles of the "{ACAD_REACTORS"
// application data
type Reactors struct {
	handles map[string]struct{}
}

// NewReactors creates a reactor set
func NewReactors(handles ...string) *Reactors {
	r := &Reactors{handles: make(map[string]struct{}, len(handles))}
	for _, h := range handles {
		r.Add(h)
	}
	return r
}

// reactorsFromTags loads the (330, handle) tags of "{ACAD_REACTORS" data
func reactorsFromTags(data tag.Tags) *Reactors {
	r := NewReactors()
	for _, t := range data {
		if t.Code == tag.Owner {
			r.Add(t.Str())
		}
	}
	return r
}

// Len returns the count of handles
func (r *Reactors) Len() int {
	return len(r.handles)
}

// Has reports handle
func (r *Reactors) Has(handle string) bool {
	_, ok := r.handles[strings.ToUpper(handle)]
	return ok
}

// Add adds handle
func (r *Reactors) Add(handle string) {
	r.handles[strings.ToUpper(handle)] = struct{}{}
}

// Discard removes handle if present
func (r *Reactors) Discard(handle string) {
	delete(r.handles, strings.ToUpper(handle))
}

// Handles returns all handles in ascending numeric order
func (r *Reactors) Handles() []string {
	out := make([]string, 0, len(r.handles))
	for h := range r.handles {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.ParseUint(out[i], 16, 64)
		b, errB := strconv.ParseUint(out[j], 16, 64)
		if errA != nil || errB != nil {
			return out[i] < out[j]
		}
		return a < b
	})
	return out
}

func (r *Reactors) clone() *Reactors {
	return NewReactors(r.Handles()...)
}

// Export writes the reactors as "{ACAD_REACTORS" application data
func (r *Reactors) Export(w tag.Writer) error {
	if err := tag.WriteTag2(w, tag.AppData, AcadReactors); err != nil {
		return err
	}
	for _, h := range r.Handles() {
		if err := tag.WriteTag2(w, tag.Owner, h); err != nil {
			return err
		}
	}
	return tag.WriteTag2(w, tag.AppData, "}")
}
