package version

// Version is set at build time with -ldflags "-X nanoprep/internal/version.Version=...".
var Version = "dev"
