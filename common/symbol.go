package common

import (
	"minicc/report"
	"minicc/types"
)

// Symbol represents a semantic symbol: a named variable or function.
type Symbol struct {
	// The name of the symbol as written in source.
	Name string

	// The unique internal label of the symbol.  Globals and functions use their
	// own name; locals and parameters are suffixed with a number so that
	// shadowed declarations in nested scopes never collide: eg. `x.2`.
	Label string

	// Where the symbol was declared.
	DefSpan *report.TextSpan

	// The declared type of the symbol.
	Type types.Type

	// The symbol's storage kind.  This must be one of the enumerated storage
	// kinds below.
	Storage int

	// Whether a definition (function body or global initializer) has been
	// seen for this symbol as opposed to just a declaration.
	Defined bool
}

// Enumeration of different storage kinds.
const (
	StorageGlobal = iota
	StorageLocal
	StorageParam
	StorageFunc
)

// IsLocal returns whether the symbol lives in a function's stack frame.
func (s *Symbol) IsLocal() bool {
	return s.Storage == StorageLocal || s.Storage == StorageParam
}

// -----------------------------------------------------------------------------

// Version is the current compiler version.
const Version = "0.3.0"

// ConfigFileName is the name of the optional toolchain configuration file.
const ConfigFileName = "minicc.toml"
