package graphpath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycle is matched by every *ResolutionError.
var ErrCycle = errors.New("graphpath: cyclic ancestor chain")

// ResolutionError reports an ancestor chain that revisits an element.
type ResolutionError struct {
	// Chain lists the visited element ids in walk order, ending with the
	// id that was reached a second time.
	Chain []string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCycle, strings.Join(e.Chain, " <- "))
}

func (e *ResolutionError) Unwrap() error {
	return ErrCycle
}
