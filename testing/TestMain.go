// Package testing is imported for side effects by handler tests: it marks
// the process as a test run and pins local time to UTC so rendered dates and
// times do not depend on the machine running the suite.
package testing

import (
	"os"
	stdtesting "testing"
	"time"
)

func init() {
	_ = os.Setenv("HCMS_TEST_MODE", "1")
	time.Local = time.UTC
}

// TestMain lets a package adopt this setup as its own entry point.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
