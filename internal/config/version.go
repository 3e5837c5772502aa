package config

// Version is the relations binary version.
// Set at build time via: -ldflags "-X github.com/persistorai/relations/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
