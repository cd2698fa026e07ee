package xtags

import (
	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/tag"
)

// HasAppData reports application data for appid like "{ACAD_REACTORS"
func (b *Block) HasAppData(appid string) bool {
	return b.appDataIndex(appid) >= 0
}

func (b *Block) appDataIndex(appid string) int {
	for i, data := range b.AppData {
		if len(data) > 0 && data[0].Value == appid {
			return i
		}
	}
	return -1
}

// GetAppData returns the application data for appid including the marker
// tags
func (b *Block) GetAppData(appid string) (tag.Tags, error) {
	i := b.appDataIndex(appid)
	if i < 0 {
		return nil, errors.NewNotFoundError("application data %q in %s", appid, b.Name())
	}
	return b.AppData[i], nil
}

// AppDataContent returns the application data for appid without the marker
// tags
func (b *Block) AppDataContent(appid string) (tag.Tags, error) {
	data, err := b.GetAppData(appid)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return tag.Tags{}, nil
	}
	return data[1 : len(data)-1].Clone(), nil
}

// SetAppDataContent replaces the content of existing application data
func (b *Block) SetAppDataContent(appid string, content tag.Tags) error {
	i := b.appDataIndex(appid)
	if i < 0 {
		return errors.NewNotFoundError("application data %q in %s", appid, b.Name())
	}
	data := b.AppData[i]
	b.AppData[i] = newAppDataTags(data[0].Str(), content, data[len(data)-1])
	return nil
}

// NewAppData appends application data for appid to the base group
// (subclass "") or the first subclass called subclass. appid has to start
// with "{". Does not check for existing data of the same appid.
func (b *Block) NewAppData(appid string, content tag.Tags, subclass string) (tag.Tags, error) {
	if len(appid) < 2 || appid[0] != '{' {
		return nil, errors.Wrapf(errors.ErrInvalidValue, "appid %q has to start with '{'", appid)
	}
	ref := tag.Tag{Code: tag.AppData, Value: AppDataRef(len(b.AppData))}
	if subclass == "" {
		b.Base = append(b.Base, ref)
	} else {
		index, err := b.SubclassIndex(subclass, 0)
		if err != nil {
			return nil, err
		}
		sc := &b.Subclasses[index-1]
		sc.Tags = append(sc.Tags, ref)
	}
	data := newAppDataTags(appid, content, tag.Tag{Code: tag.AppData, Value: "}"})
	b.AppData = append(b.AppData, data)
	return data, nil
}

func newAppDataTags(appid string, content tag.Tags, closing tag.Tag) tag.Tags {
	data := make(tag.Tags, 0, len(content)+2)
	data = append(data, tag.Tag{Code: tag.AppData, Value: appid})
	data = append(data, content...)
	return append(data, closing)
}

// HasXData reports xdata for appid
func (b *Block) HasXData(appid string) bool {
	return b.xdataIndex(appid) >= 0
}

func (b *Block) xdataIndex(appid string) int {
	for i, data := range b.XData {
		if len(data) > 0 && data[0].Value == appid {
			return i
		}
	}
	return -1
}

// GetXData returns the xdata for appid including the (1001, appid) tag
func (b *Block) GetXData(appid string) (tag.Tags, error) {
	i := b.xdataIndex(appid)
	if i < 0 {
		return nil, errors.NewNotFoundError("xdata for APPID %q in %s", appid, b.Name())
	}
	return b.XData[i], nil
}

// SetXData replaces the content of existing xdata for appid
func (b *Block) SetXData(appid string, content tag.Tags) error {
	i := b.xdataIndex(appid)
	if i < 0 {
		return errors.NewNotFoundError("xdata for APPID %q in %s", appid, b.Name())
	}
	b.XData[i] = append(tag.Tags{b.XData[i][0]}, content...)
	return nil
}

// NewXData appends xdata for appid. Does not check for existing data of
// the same appid.
func (b *Block) NewXData(appid string, content tag.Tags) tag.Tags {
	data := append(tag.Tags{{Code: tag.XDataMarker, Value: appid}}, content...)
	b.XData = append(b.XData, data)
	return data
}
