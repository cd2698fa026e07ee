package entity

import (
	"fmt"
	"sort"
	"sync"

	"github.com/teranos/dxfcore/schema"
	"github.com/teranos/dxfcore/version"
)

// Class describes a registered entity type
type Class struct {
	DXFType string
	Schema  *schema.Schema
	// New returns a zero entity of the type, Base is initialized by the
	// lifecycle functions
	New func() Entity
	// Defaults are set by New before the user attributes
	Defaults map[string]interface{}
	// MinExportVersion is the first DXF version able to store the type,
	// "" for all versions
	MinExportVersion version.Version
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Class)
)

// Register adds class to the registry. It panics on duplicate DXF types:
// classes are registered in init functions.
func Register(class *Class) {
	if class.DXFType == "" || class.Schema == nil || class.New == nil {
		panic(fmt.Sprintf("entity: incomplete class %q", class.DXFType))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[class.DXFType]; exists {
		panic(fmt.Sprintf("entity: duplicate class %q", class.DXFType))
	}
	registry[class.DXFType] = class
}

// Lookup returns the class of dxftype
func Lookup(dxftype string) (*Class, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	class, ok := registry[dxftype]
	return class, ok
}

// RegisteredTypes returns all registered DXF types in sorted order
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for dxftype := range registry {
		types = append(types, dxftype)
	}
	sort.Strings(types)
	return types
}

// RegisterGeneric registers a schema driven entity type which keeps all
// tags without attribute definition
func RegisterGeneric(dxftype string, s *schema.Schema) *Class {
	class := &Class{
		DXFType: dxftype,
		Schema:  s,
		New:     func() Entity { return &Generic{} },
	}
	Register(class)
	return class
}

func init() {
	Register(&Class{
		DXFType: "DICTIONARY",
		Schema:  dictionarySchema,
		New:     func() Entity { return &Dictionary{} },
	})
	Register(&Class{
		DXFType: "XRECORD",
		Schema:  xrecordSchema,
		New:     func() Entity { return &XRecord{} },
	})
}
