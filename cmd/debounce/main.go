package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/offlinefirst/debounce/internal/cmd"
	"github.com/offlinefirst/debounce/pkg/session"
)

func main() {
	root := cmd.NewRootCommand()
	if err := root.Execute(os.Args[1:]); err != nil {
		var exit *session.ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
