package config

// Source identifies the layer a resolved value came from.
type Source string

// Resolution layers, lowest to highest priority.
const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)
