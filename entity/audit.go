package entity

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/teranos/dxfcore/errors"
	"github.com/teranos/dxfcore/logger"
)

// AuditCode classifies audit fixes
type AuditCode int

// Audit codes, numbered like the AutoCAD audit codes
const (
	AuditPointerTargetNotExist  AuditCode = 3
	AuditInvalidEntityHandle    AuditCode = 201
	AuditInvalidOwnerHandle     AuditCode = 202
	AuditInvalidDictionaryEntry AuditCode = 213
	AuditInvalidXDict           AuditCode = 221
	AuditInvalidReactor         AuditCode = 222
)

var auditCodeNames = map[AuditCode]string{
	AuditPointerTargetNotExist:  "pointer_target_not_exist",
	AuditInvalidEntityHandle:    "invalid_entity_handle",
	AuditInvalidOwnerHandle:     "invalid_owner_handle",
	AuditInvalidDictionaryEntry: "invalid_dictionary_entry",
	AuditInvalidXDict:           "invalid_extension_dictionary",
	AuditInvalidReactor:         "invalid_reactor",
}

func (c AuditCode) String() string {
	if name, ok := auditCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("audit_code_%d", int(c))
}

// MarshalYAML writes the code name
func (c AuditCode) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// AuditFix is one repaired error
type AuditFix struct {
	Code    AuditCode `yaml:"code"`
	Message string    `yaml:"message"`
	DXFType string    `yaml:"dxftype,omitempty"`
	Handle  string    `yaml:"handle,omitempty"`
}

// AuditReport collects the repairs of an audit run
type AuditReport struct {
	Fixes []AuditFix `yaml:"fixes"`
}

// Fixed records a repaired error of e, e may be nil
func (r *AuditReport) Fixed(code AuditCode, e Entity, format string, args ...interface{}) {
	fix := AuditFix{Code: code, Message: fmt.Sprintf(format, args...)}
	if e != nil {
		fix.DXFType = e.DXFType()
		fix.Handle = e.Handle()
	}
	r.Fixes = append(r.Fixes, fix)
	logger.ComponentLogger("dxf.audit").Debugw(fix.Message,
		"code", code.String(),
		logger.FieldDXFType, fix.DXFType,
		logger.FieldHandle, fix.Handle,
	)
}

// Len returns the count of fixes
func (r *AuditReport) Len() int {
	return len(r.Fixes)
}

// Has reports a fix of code
func (r *AuditReport) Has(code AuditCode) bool {
	for _, f := range r.Fixes {
		if f.Code == code {
			return true
		}
	}
	return false
}

// YAML renders the report
func (r *AuditReport) YAML() (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", errors.Wrap(err, "marshal audit report")
	}
	return string(data), nil
}

// Audit repairs the data common to all entities and runs the Auditable
// hook: dead extension dictionaries and reactors to missing entities are
// removed.
func Audit(e Entity, db Database, report *AuditReport) {
	b := e.base()
	if !b.IsAlive() {
		return
	}
	if b.xdict != nil {
		switch {
		case !b.xdict.IsAlive():
			b.xdict = nil
		case b.xdict.dict == nil && !db.Has(b.xdict.handle):
			report.Fixed(AuditInvalidXDict, e, "removed extension dictionary #%s without DICTIONARY object", b.xdict.handle)
			b.xdict = nil
		case b.xdict.dict != nil && !b.xdict.dict.IsAlive():
			report.Fixed(AuditInvalidXDict, e, "removed destroyed extension dictionary")
			b.xdict = nil
		}
	}
	if b.reactors != nil {
		for _, handle := range b.reactors.Handles() {
			if !db.Has(handle) {
				b.reactors.Discard(handle)
				report.Fixed(AuditInvalidReactor, e, "removed reactor #%s to missing entity", handle)
			}
		}
	}
	if hook, ok := e.(Auditable); ok {
		hook.Audit(db, report)
	}
}
