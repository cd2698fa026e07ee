package am

import (
	"github.com/teranos/dxfcore/entity"
	"github.com/teranos/dxfcore/tag"
	"github.com/teranos/dxfcore/version"
)

// CopySettings returns the configured copy settings of duplicated entities
func (c *Config) CopySettings() entity.CopySettings {
	return entity.CopySettings{
		ResetHandles:                     c.Copy.ResetHandles,
		CopyExtensionDict:                c.Copy.CopyExtensionDict,
		CopyXData:                        c.Copy.CopyXData,
		CopyAppData:                      c.Copy.CopyAppData,
		CopyReactors:                     c.Copy.CopyReactors,
		SetSourceOfCopy:                  c.Copy.SetSourceOfCopy,
		IgnoreCopyErrorsInLinkedEntities: c.Copy.IgnoreCopyErrorsInLinkedEntities,
	}
}

// WriterVersion returns the target DXF version, invalid values fall back
// to the default
func (c *Config) WriterVersion() version.Version {
	if c.Writer.DXFVersion == "" {
		return version.Version(DefaultDXFVersion)
	}
	v, err := version.Parse(c.Writer.DXFVersion)
	if err != nil {
		return version.Version(DefaultDXFVersion)
	}
	return v
}

// WriterOptions returns the tag writer options, legacy versions are
// written as cp1252
func (c *Config) WriterOptions() tag.WriterOptions {
	v := c.WriterVersion()
	opts := tag.WriterOptions{
		Version:      v,
		WithHandles:  c.Writer.WriteHandles,
		WithOptional: c.Writer.ForceOptional,
	}
	if v.Before(version.R2007) {
		opts.Encoding = tag.EncodingFor("ANSI_1252")
	}
	return opts
}

// LoadOptions returns the options of the untrusted entity load path
func (c *Config) LoadOptions() entity.LoadOptions {
	return entity.LoadOptions{
		RecoverGraphicAttributes: c.Reader.RecoverGraphicAttributes,
		LogUnprocessedTags:       c.Reader.LogUnprocessedTags,
	}
}

// TagReadOptions returns the options of the tag loaders
func (c *Config) TagReadOptions() tag.ReadOptions {
	return tag.ReadOptions{SkipComments: c.Reader.SkipComments}
}
