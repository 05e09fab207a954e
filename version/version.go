// Package version holds build information injected via ldflags.
package version

import (
	"fmt"
	"runtime"
)

// These are set at build time, e.g.
//
//	go build -ldflags "-X github.com/jackzampolin/pdfsplit/version.GitRelease=v0.1.0"
var (
	GitRelease    = "dev"
	GitCommit     = "none"
	GitCommitDate = "unknown"
)

// GoInfo reports the Go toolchain and platform the binary was built for.
var GoInfo = fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)
