package app

import (
	"os"
	"sync"
)

// TestModeEnv is set by test helpers so the binary never dials the API or redis.
const TestModeEnv = "FAIRDESK_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})

// InTestMode reports whether process startup side effects should be skipped.
func InTestMode() bool {
	return testMode()
}
