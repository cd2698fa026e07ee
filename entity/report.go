package entity

import (
	"fmt"

	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/tag"
)

// AttrIssue records one invalid attribute value found while loading
type AttrIssue struct {
	Subclass  string
	Attribute string
	Code      int
	Value     interface{}
	// replacement value, nil for discarded values
	Result interface{}
	Policy schema.Recovery
}

func (i AttrIssue) String() string {
	if i.Policy == schema.RecoverDiscard {
		return fmt.Sprintf("discarded invalid %s=%v", i.Attribute, i.Value)
	}
	return fmt.Sprintf("%s invalid %s=%v -> %v", i.Policy, i.Attribute, i.Value, i.Result)
}

// LoadReport collects the repairs of one entity load. Recoverable attribute
// errors are reported here and never returned as error.
type LoadReport struct {
	DXFType string
	Handle  string
	Issues  []AttrIssue
	// graphic attributes found outside of the AcDbEntity subclass
	Recovered []string
	// tags without attribute definition by subclass name, "" is the base
	// class
	Unprocessed map[string]tag.Tags
	// existing attributes not supported by the document version
	Unsupported []string
	// xdata removed because of invalid group codes
	DroppedXData int
}

func newLoadReport(dxftype, handle string) *LoadReport {
	return &LoadReport{DXFType: dxftype, Handle: handle}
}

func (r *LoadReport) addUnprocessed(subclass string, tags tag.Tags) {
	if len(tags) == 0 {
		return
	}
	if r.Unprocessed == nil {
		r.Unprocessed = make(map[string]tag.Tags)
	}
	r.Unprocessed[subclass] = append(r.Unprocessed[subclass], tags...)
}

// Fixed returns the count of invalid values replaced by a fixer or default
func (r *LoadReport) Fixed() int {
	n := 0
	for _, i := range r.Issues {
		if i.Policy == schema.RecoverFix || i.Policy == schema.RecoverDefault {
			n++
		}
	}
	return n
}

// Discarded returns the count of invalid values treated as absent
func (r *LoadReport) Discarded() int {
	n := 0
	for _, i := range r.Issues {
		if i.Policy == schema.RecoverDiscard {
			n++
		}
	}
	return n
}

// IsClean reports a load without any repair
func (r *LoadReport) IsClean() bool {
	return len(r.Issues) == 0 && len(r.Recovered) == 0 && r.DroppedXData == 0
}
