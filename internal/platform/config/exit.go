package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

// ExitCode maps a command result to a process exit status. A nil error,
// a help request, and a cancelled run all count as success.
func ExitCode(err error) int {
	switch {
	case err == nil,
		errors.Is(err, flag.ErrHelp),
		errors.Is(err, context.Canceled):
		return 0
	default:
		return 1
	}
}

// Exit reports err on stderr, tagged with the current log prefix, and exits
// with ExitCode(err). It returns only when err maps to success.
func Exit(err error) {
	code := ExitCode(err)
	if code == 0 {
		return
	}
	report(os.Stderr, err)
	os.Exit(code)
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "%s%v\n", log.Prefix(), err)
}
