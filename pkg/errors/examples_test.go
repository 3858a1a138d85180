package errors_test

import (
	"fmt"

	"github.com/agentstation/tablesync/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := &errors.NotFoundError{
		Resource: "history entry",
		ID:       "42",
	}

	if errors.IsNotFound(err) {
		fmt.Println("Resource not found")
	}

	// Output: Resource not found
}

// Example_sourceUnavailable shows how fetch failures are classified.
func Example_sourceUnavailable() {
	err := errors.NewSourceUnavailableError("acme", "http://acme.local/api/files", 502, nil)

	if errors.IsSourceUnavailable(err) {
		fmt.Println("skipping source:", err.Error())
	}

	// Output: skipping source: source acme unavailable at http://acme.local/api/files (status 502)
}
