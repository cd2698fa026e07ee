package entity

// CopySettings controls Copy
type CopySettings struct {
	// ResetHandles creates handle-less, owner-less clones
	ResetHandles bool
	// CopyExtensionDict deep copies the extension dictionary and its hard
	// owned entries
	CopyExtensionDict bool
	CopyXData         bool
	CopyAppData       bool
	// CopyReactors is off by default, reactors are rebuilt by the owner
	CopyReactors    bool
	SetSourceOfCopy bool
	// IgnoreCopyErrorsInLinkedEntities skips linked entities which do not
	// support copying instead of failing the whole copy
	IgnoreCopyErrorsInLinkedEntities bool
}

// DefaultCopySettings returns the settings of a plain copy
func DefaultCopySettings() CopySettings {
	return CopySettings{
		ResetHandles:                     true,
		CopyExtensionDict:                true,
		CopyXData:                        true,
		CopyAppData:                      true,
		SetSourceOfCopy:                  true,
		IgnoreCopyErrorsInLinkedEntities: true,
	}
}
