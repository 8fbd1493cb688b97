// Package scanner copies an installed-application inventory and its usage
// history from a live source into the SQLite mirror.
package scanner

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/permaudit/internal/store"
)

// Scanner captures sources and imports them into the mirror.
type Scanner struct {
	store *store.Store
	log   logrus.FieldLogger

	// OnProgress, when set, is called after each application is resolved.
	OnProgress func(done, total int)
}

// New creates a new Scanner instance with the given store. A nil logger
// discards output.
func New(store *store.Store, log logrus.FieldLogger) *Scanner {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Scanner{store: store, log: log}
}
