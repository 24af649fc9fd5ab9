package ir

const (
	// GeneratorName is written to the generatedBy field of every manifest.
	GeneratorName = "funcbind"

	// Version is the funcbind release.
	Version = "0.1.0"
)
