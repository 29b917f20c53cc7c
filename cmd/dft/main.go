// Command dft runs configuration-driven data pipelines.
package main

import (
	"fmt"
	"os"

	"github.com/kbukum/dft/errors"

	_ "github.com/kbukum/dft/endpoints"
	_ "github.com/kbukum/dft/processors"
	_ "github.com/kbukum/dft/sources"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var coded interface{ ExitCode() int }
		if errors.As(err, &coded) {
			os.Exit(coded.ExitCode())
		}
		os.Exit(errors.ExitRunFailed)
	}
}
