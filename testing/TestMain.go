// Package testing switches the process into test mode for packages that
// import it for side effects and points the API client at a closed port.
package testing

import (
	"os"
	stdtesting "testing"

	_ "github.com/fairdesk/fairdesk/internal/testing/guard"
)

func init() {
	if os.Getenv("API_BASE_URL") == "" {
		_ = os.Setenv("API_BASE_URL", "http://127.0.0.1:0/api/")
	}
}

func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
