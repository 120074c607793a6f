package highlight

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/sakif/snippet-activity/internal/language"
)

// ErrUnknownLanguage is returned for languages no lexer exists for.
var ErrUnknownLanguage = errors.New("unknown language")

// Registry holds one lexer per language key. Lexers are resolved the first
// time a language is asked for and never again: a second Load of the same
// key returns the cached lexer, or the cached failure.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	// resolve maps a lexer name to a lexer, nil when none exists.
	resolve func(name string) chroma.Lexer
}

type entry struct {
	once  sync.Once
	lexer chroma.Lexer
	err   error
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		resolve: lexers.Get,
	}
}

// Load returns the lexer for a language key.
func (r *Registry) Load(lang string) (chroma.Lexer, error) {
	key := language.Normalize(lang)

	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		e = &entry{}
		r.entries[key] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		lexer := r.resolve(language.LexerName(key))
		if lexer == nil {
			e.err = fmt.Errorf("%w: %q", ErrUnknownLanguage, key)
			return
		}
		e.lexer = chroma.Coalesce(lexer)
	})
	return e.lexer, e.err
}

// Loaded returns the keys that have been asked for, sorted.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
