package cliptl

// Version information for cliptl.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/ZaguanLabs/cliptl.GitCommit=$(git rev-parse HEAD)"
const (
	// Name is the application name.
	Name = "cliptl"

	// Description is a short description of the application.
	Description = "Clipboard translator - translate copied text into a popup"

	// Version is the semantic version of the application.
	Version = "0.3.0"

	// Repository is the source code repository URL.
	Repository = "https://github.com/ZaguanLabs/cliptl"

	// License is the software license.
	License = "MIT"
)

// Build information, set via ldflags during release builds.
var (
	GitCommit = "unknown"
	GitBranch = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// FullVersion returns the version string with the short commit appended when known.
func FullVersion() string {
	if GitCommit == "unknown" || GitCommit == "" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return Version + "+" + short
}

// UserAgent returns the User-Agent header sent by the HTTP providers.
func UserAgent() string {
	return Name + "/" + Version + " (+" + Repository + ")"
}
