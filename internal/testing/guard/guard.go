// Package guard marks the binary as running under test when imported, so
// cmd/fairdesk never dials the API or redis from a test binary.
package guard

import "os"

// Env is the variable app.InTestMode reads.
const Env = "FAIRDESK_TEST_MODE"

func init() {
	if os.Getenv(Env) == "" {
		_ = os.Setenv(Env, "1")
	}
}
