// Package obs wires up the engine's structured logger the way the teacher
// wires its own default logger: a text adapter over stderr unless the
// caller supplies one.
package obs

import (
	"context"
	"io"
	"os"

	"github.com/happy-sdk/happy/pkg/logging"
)

// New returns a logging.Logger writing text-formatted records to w (stderr
// if w is nil) at the given level.
func New(w io.Writer, level logging.Level) logging.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := logging.DefaultOptions()
	opts.Level = level
	return logging.NewTextLogger(context.Background(), w, opts)
}
