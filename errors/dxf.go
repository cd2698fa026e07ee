package errors

// Sentinel errors of the tag/entity engine.
// Use these with errors.Is() for type-safe error checking.
var (
	// ErrStructure indicates a malformed tag structure that cannot be
	// repaired, e.g. an appdata block without closing tag. Fatal to the
	// current entity, not to the whole document.
	ErrStructure = New("invalid DXF structure")

	// ErrInvalidValue indicates a tag value that cannot be cast to the
	// type required by its group code.
	ErrInvalidValue = New("invalid DXF value")

	// ErrDuplicateHandle indicates a handle already bound to a live entity
	ErrDuplicateHandle = New("duplicate handle")

	// ErrInvalidHandle indicates a malformed or reserved ("0") handle
	ErrInvalidHandle = New("invalid handle")

	// ErrNotFound indicates a lookup miss (entity database, dictionary key,
	// appdata or xdata application)
	ErrNotFound = New("not found")

	// ErrAttributeUnset indicates an attribute without stored value and
	// without a usable default
	ErrAttributeUnset = New("attribute unset")

	// ErrInvalidAttribute indicates an unknown attribute name or an invalid
	// value assigned on the trusted path
	ErrInvalidAttribute = New("invalid attribute")

	// ErrSubclassNotFound indicates a missing subclass
	ErrSubclassNotFound = New("subclass not found")

	// ErrCopyNotSupported indicates an entity type that cannot be copied
	ErrCopyNotSupported = New("copy not supported")

	// ErrVersion indicates an unknown or unsupported format version
	ErrVersion = New("unsupported DXF version")

	// ErrDestroyed indicates an operation on a destroyed entity
	ErrDestroyed = New("entity destroyed")
)

// NewStructureError creates a structure error with a formatted message
func NewStructureError(format string, args ...interface{}) error {
	return Wrap(ErrStructure, Newf(format, args...).Error())
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidAttributeError creates an invalid-attribute error for attribute
// name of entity type dxftype.
func NewInvalidAttributeError(dxftype, name string) error {
	return WithHintf(
		Wrapf(ErrInvalidAttribute, "%q is not an attribute of %s", name, dxftype),
		"check the schema of %s for supported attribute names", dxftype,
	)
}

// NewDuplicateHandleError creates a duplicate-handle error for handle
func NewDuplicateHandleError(handle string) error {
	return WithHint(
		Wrapf(ErrDuplicateHandle, "handle #%s", handle),
		"reseed the handle generator above the highest stored handle",
	)
}

// IsStructureError checks if an error is or wraps ErrStructure
func IsStructureError(err error) bool {
	return err != nil && Is(err, ErrStructure)
}

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsAttributeUnset checks if an error is or wraps ErrAttributeUnset
func IsAttributeUnset(err error) bool {
	return err != nil && Is(err, ErrAttributeUnset)
}
