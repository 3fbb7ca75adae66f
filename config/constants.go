package config

// Bytes per MB
const MB = 1024 * 1024

// Verbosity levels accepted by [ConfigOverride.LogLvl]; 1 is least verbose.
const (
	ErrorVerbose = iota + 1
	WarnVerbose
	InfoVerbose
	DebugVerbose
	TraceVerbose
)
