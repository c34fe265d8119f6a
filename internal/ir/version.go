package ir

// Version constants for the IR schema and engine.
const (
	// SchemaVersion is the IR document schema version.
	SchemaVersion = "1"

	// EngineVersion is the specfold engine version.
	EngineVersion = "0.1.0"
)
