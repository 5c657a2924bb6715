package app

import (
	"os"
	"runtime/debug"
	"sync"
)

const testModeEnv = "ONLINESTORE_TEST_MODE"

var (
	testMode     bool
	testModeOnce sync.Once
)

// InTestMode reports whether the process runs under tests, in which case the
// entry point must not open network resources.
func InTestMode() bool {
	testModeOnce.Do(func() {
		testMode = os.Getenv(testModeEnv) == "1"
	})
	return testMode
}

// Version returns the main module version embedded by the go tool, or "devel".
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "devel"
	}
	return info.Main.Version
}
