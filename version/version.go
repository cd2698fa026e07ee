// Package version carries DXF format versions (AC10xx codes) used for
// attribute gating, and the build information of the library itself.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/teranos/dxfcore/version.Commit=..."
var (
	Commit = ""
	Built  = ""
)

// Build describes a dxfcore binary and the DXF releases it handles
type Build struct {
	Module   string    `json:"module"`
	Commit   string    `json:"commit,omitempty"`
	Built    string    `json:"built,omitempty"`
	Go       string    `json:"go"`
	Platform string    `json:"platform"`
	Latest   Version   `json:"latest_dxf"`
	Writable []Version `json:"writable_dxf"`
}

// Get returns the build of the running binary. The module version comes
// from the embedded build info, "(devel)" for local builds.
func Get() Build {
	b := Build{
		Module:   "(devel)",
		Commit:   Commit,
		Built:    Built,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
		Latest:   Latest,
		Writable: append([]Version(nil), Writable...),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" {
			b.Module = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "":
				b.Commit = s.Value
			case s.Key == "vcs.time" && b.Built == "":
				b.Built = s.Value
			}
		}
	}
	return b
}

// String reads like "dxfcore v0.3.0 (a1b2c3d), writes R12 .. R2018"
func (b Build) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "dxfcore %s", b.Module)
	if rev := b.Revision(); rev != "" {
		fmt.Fprintf(&sb, " (%s)", rev)
	}
	if len(b.Writable) > 0 {
		fmt.Fprintf(&sb, ", writes %s .. %s", b.Writable[0].Release(), b.Writable[len(b.Writable)-1].Release())
	}
	return sb.String()
}

// Revision returns the commit shortened to 7 characters
func (b Build) Revision() string {
	if len(b.Commit) > 7 {
		return b.Commit[:7]
	}
	return b.Commit
}
