// Package guard switches the process into test mode when imported, so that
// binaries under test skip network and database startup.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("BOOKS_TEST_MODE") == "" {
			_ = os.Setenv("BOOKS_TEST_MODE", "1")
		}
	})
}
