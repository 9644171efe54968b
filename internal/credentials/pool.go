// Package credentials dispenses API credentials in round-robin order.
//
// A Pool is built once at startup from the first non-empty credential source
// and shared by every consumer that talks to the cloud API. Next is safe for
// concurrent use; the lock guards only the cursor step.
package credentials

import (
	"os"
	"strings"
	"sync"

	"fastscribe/internal/services"
)

// Environment variables consulted by SourcesFromEnv.
const (
	EnvMultiKey  = "OPENAI_API_KEYS"
	EnvSingleKey = "OPENAI_API_KEY"
)

// Source names which credential source populated a pool.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceMulti    Source = "multi"
	SourceSingle   Source = "single"
	SourceFallback Source = "fallback"
)

// Pool is a fixed, ordered list of credentials with a rotating cursor.
type Pool struct {
	keys   []string
	source Source

	mu     sync.Mutex
	cursor int
}

// New builds a pool from keys. Entries are trimmed and blanks dropped; an empty
// result is a fatal configuration error.
func New(keys []string) (*Pool, error) {
	return newPool(cleanKeys(keys), SourceExplicit)
}

func newPool(keys []string, source Source) (*Pool, error) {
	if len(keys) == 0 {
		return nil, services.Wrap(services.ErrFatalConfig, "credentials", "build pool", "no API credentials configured", nil)
	}
	return &Pool{keys: keys, source: source}, nil
}

// Next returns the credential at the cursor and advances it, wrapping at the
// end of the pool.
func (p *Pool) Next() string {
	p.mu.Lock()
	key := p.keys[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.keys)
	p.mu.Unlock()
	return key
}

// Size returns the number of credentials. The key list never changes after
// construction, so no lock is taken.
func (p *Pool) Size() int {
	return len(p.keys)
}

// Source reports which source populated the pool.
func (p *Pool) Source() Source {
	return p.source
}

// Sources lists every place credentials may come from, highest precedence
// first.
type Sources struct {
	Explicit []string
	Multi    string
	Single   string
	Fallback []string
}

// SourcesFromEnv combines caller-supplied lists with the process environment.
func SourcesFromEnv(explicit, fallback []string) Sources {
	return Sources{
		Explicit: explicit,
		Multi:    os.Getenv(EnvMultiKey),
		Single:   os.Getenv(EnvSingleKey),
		Fallback: fallback,
	}
}

// FromSources builds a pool from the first non-empty source: explicit list,
// then the comma separated multi value, then the single value, then the
// fallback list.
func FromSources(src Sources) (*Pool, error) {
	if keys := cleanKeys(src.Explicit); len(keys) > 0 {
		return newPool(keys, SourceExplicit)
	}
	if keys := cleanKeys(strings.Split(src.Multi, ",")); len(keys) > 0 {
		return newPool(keys, SourceMulti)
	}
	if single := strings.TrimSpace(src.Single); single != "" {
		return newPool([]string{single}, SourceSingle)
	}
	return newPool(cleanKeys(src.Fallback), SourceFallback)
}

func cleanKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
