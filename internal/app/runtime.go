package app

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"
)

const testModeEnv = "HCMS_TEST_MODE"

var (
	testMode     atomic.Bool
	testModeInit sync.Once
)

func detectTestMode() {
	on, err := strconv.ParseBool(os.Getenv(testModeEnv))
	testMode.Store(err == nil && on)
}

// InTestMode reports whether HCMS_TEST_MODE is set to a true value. The
// server binary exits before dialing Redis or Postgres when it is.
func InTestMode() bool {
	testModeInit.Do(detectTestMode)
	return testMode.Load()
}

// RefreshTestMode re-reads the environment, for tests that toggle the flag.
func RefreshTestMode() {
	testModeInit.Do(func() {})
	detectTestMode()
}
