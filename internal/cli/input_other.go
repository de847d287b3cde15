//go:build !unix

package cli

import (
	"io"
	"os"
)

// newInput returns f as is. A watcher blocked on it is not stopped when the
// replay ends and keeps reading until the process exits.
func newInput(f *os.File) io.Reader {
	return f
}
