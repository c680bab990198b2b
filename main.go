// main is the entrypoint for the pess CLI.
package main

import (
	"fmt"
	"os"

	"github.com/ArnoldoM23/pess/cmd"
	"github.com/ArnoldoM23/pess/internal/scorestore"
)

func main() {
	err := cmd.Execute()
	scorestore.CloseStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
