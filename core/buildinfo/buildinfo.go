package buildinfo

// Set at build time, for example:
//
//	go build -ldflags "-X 'github.com/m3rciful/relaybot/core/buildinfo.Version=v0.3.0' \
//	  -X 'github.com/m3rciful/relaybot/core/buildinfo.Commit=$(git rev-parse --short HEAD)' \
//	  -X 'github.com/m3rciful/relaybot/core/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)'" ./cmd/relaybot
var (
	// Version is the release tag of the build.
	Version = "dev"
	// Commit is the source commit of the build.
	Commit = "local"
	// Date is the RFC3339 build time.
	Date = ""
)
