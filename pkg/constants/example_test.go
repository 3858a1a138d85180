package constants_test

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/tablesync/pkg/constants"
)

// Example demonstrates the permission constants used for every file tablesync writes.
func Example() {
	fmt.Printf("dirs %o, files %o\n", constants.DirPermissions, constants.FilePermissions)
	// Output: dirs 755, files 644
}

// Example_processedName shows how canonical artifacts are named per source.
func Example_processedName() {
	fmt.Println(constants.ProcessedPrefix + "acme" + ".xlsx")
	// Output: processed_acme.xlsx
}

// Example_compositeSeparator shows the separator used to split description cells.
func Example_compositeSeparator() {
	fmt.Println(len(strings.Split("Mouse/Keyboard", constants.CompositeSeparator)))
	// Output: 2
}

// Example_dateFormat shows how date cells render.
func Example_dateFormat() {
	fmt.Println(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC).Format(constants.DateFormat))
	// Output: 2024-01-14
}
