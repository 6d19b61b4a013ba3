package ir

// Version constants for the request schema and compiler.
const (
	// IRVersion is the request schema version.
	IRVersion = "1"

	// CompilerVersion is the pathq compiler version.
	CompilerVersion = "0.1.0"
)
