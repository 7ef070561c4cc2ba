package viewbind

import (
	"io"
	"log"
	"os"
	"sync/atomic"
)

var logger atomic.Value // *log.Logger

func init() {
	logger.Store(log.New(os.Stderr, "viewbind: ", log.LstdFlags))
}

// SetLogger replaces the logger used to report binding failures. A nil logger
// discards them.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger.Store(l)
}

func logf(format string, args ...interface{}) {
	logger.Load().(*log.Logger).Printf(format, args...)
}
