package report

import (
	"context"
	"sync"

	"github.com/go-pdf/fpdf"
)

// engine carries what every document needs once the PDF backend is ready.
type engine struct {
	// translate maps UTF-8 text onto the cp1252 encoding of the core fonts.
	translate func(string) string
}

// loader acquires the engine exactly once. Concurrent callers wait for the
// same load and share its outcome.
type loader struct {
	once sync.Once
	done chan struct{}
	eng  *engine
	err  error
	load func() (*engine, error)
}

func newLoader(load func() (*engine, error)) *loader {
	return &loader{done: make(chan struct{}), load: load}
}

// acquire starts the load on first use and waits for it or for ctx.
func (l *loader) acquire(ctx context.Context) (*engine, error) {
	l.once.Do(func() {
		go func() {
			l.eng, l.err = l.load()
			close(l.done)
		}()
	})
	select {
	case <-l.done:
		return l.eng, l.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func loadEngine() (*engine, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	translate := doc.UnicodeTranslatorFromDescriptor("")
	if err := doc.Error(); err != nil {
		return nil, err
	}
	return &engine{translate: translate}, nil
}
