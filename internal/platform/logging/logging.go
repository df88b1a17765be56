package logging

import (
	"io"
	"os"

	hclog "github.com/hashicorp/go-hclog"
)

const DefaultLevel = "warn"

// New builds the root logger. Unknown levels fall back to DefaultLevel.
func New(level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.LevelFromString(DefaultLevel)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "meetnote",
		Level:  lvl,
		Output: w,
	})
}

// Discard is used where no logger was wired, mostly in tests.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
