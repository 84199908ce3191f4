package cli

// Overridden at build time with -ldflags "-X github.com/kvesta/lem/cli.versions=..."
var versions = "lem v0.1.0"
