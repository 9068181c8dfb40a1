package ir

// Version constants for the configuration schema and engine.
const (
	// SchemaVersion is the configuration document schema version.
	SchemaVersion = "1"

	// EngineVersion is the volley engine version.
	EngineVersion = "0.1.0"
)
