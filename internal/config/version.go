package config

// Version is the flowgraph binary version.
// Set at build time via: -ldflags "-X github.com/flowgraphai/flowgraph/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
