// Command bucketree turns flat object-store listings into trees.
package main

import "github.com/bucketree/bucketree/internal/cmd"

// Build metadata injected via -ldflags.
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	cmd.Execute()
}
