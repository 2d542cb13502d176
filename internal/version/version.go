package version

import (
	"runtime"
	"runtime/debug"
)

// ModulePath is the import path of the Tether module.
const ModulePath = "github.com/dogmatiq/tether"

// Version is the version of the Tether module that is compiled into the
// current binary.
var Version = "0.0.0-dev"

func init() {
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Path == ModulePath && info.Main.Version != "(devel)" && info.Main.Version != "" {
			Version = info.Main.Version
		}

		for _, dep := range info.Deps {
			if dep.Path == ModulePath {
				Version = dep.Version
			}
		}
	}
}

// UserAgent returns the value of the User-Agent header sent by the HTTP
// transport.
func UserAgent() string {
	return "tether/" + Version + " (" + runtime.GOOS + "; " + runtime.Version() + ")"
}
