package buildinfo

// These variables are intended to be set via -ldflags at build time:
//
//	-X 'github.com/m3rciful/tracker/internal/buildinfo.Version=v1.2.3'
//	-X 'github.com/m3rciful/tracker/internal/buildinfo.Commit=abcdef0'
//	-X 'github.com/m3rciful/tracker/internal/buildinfo.Date=2025-08-30T12:00:00Z'
var (
	// Version reports the release tag of the bot binary.
	Version = "dev"
	// Commit reports the source control commit used for the build.
	Commit = "local"
	// Date reports the build timestamp in RFC3339 format.
	Date = ""
)

// String renders version metadata for the startup log line.
func String() string {
	if Date == "" {
		return Version + " (" + Commit + ")"
	}
	return Version + " (" + Commit + ", " + Date + ")"
}
