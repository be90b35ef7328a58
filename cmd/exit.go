package cmd

import (
	"context"
	"errors"

	"github.com/gnolang/voidcaster/internal/ctree"
	"github.com/gnolang/voidcaster/internal/interact"
	"github.com/gnolang/voidcaster/lint"
)

// exit statuses
const (
	exitOK        = 0
	exitUsage     = 1
	exitFileOpen  = 2
	exitParse     = 3
	exitSuggested = 4
	exitProvider  = 5
	// exitAlloc is kept for compatibility. The Go runtime aborts the
	// process itself when memory runs out.
	exitAlloc = 6
)

var (
	errUsage = errors.New("invalid usage")
	// errSuggested carries exit status 4 and is not printed.
	errSuggested = errors.New("a suggestion was given")
)

func exitCode(err error) int {
	switch {
	case err == nil, errors.Is(err, interact.ErrInputClosed):
		return exitOK
	case errors.Is(err, errSuggested):
		return exitSuggested
	case errors.Is(err, ctree.ErrFileOpen):
		return exitFileOpen
	case errors.Is(err, lint.ErrParse):
		return exitParse
	case errors.Is(err, ctree.ErrProvider), errors.Is(err, context.DeadlineExceeded):
		return exitProvider
	}
	return exitUsage
}

// isQuiet reports whether err has already been explained to the user.
func isQuiet(err error) bool {
	return errors.Is(err, errSuggested) ||
		errors.Is(err, interact.ErrInputClosed) ||
		errors.Is(err, lint.ErrParse)
}
