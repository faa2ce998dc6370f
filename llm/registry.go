package llm

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
)

// ProviderConfig carries the construction-time settings a registered
// factory may use. Fields that are not meaningful to a given provider are
// ignored by it.
type ProviderConfig struct {
	// CompartmentID is the default tenancy-scoping identifier, applied to
	// requests that do not carry their own.
	CompartmentID string

	// Region selects the provider's regional endpoint. When empty the
	// provider derives it from the credential profile.
	Region string

	// Endpoint overrides the derived base URL entirely (used in tests and
	// for dedicated endpoints).
	Endpoint string

	// CredentialsFile and Profile select the credential profile the
	// provider signs requests with. Empty values mean the platform default.
	CredentialsFile string
	Profile         string

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Factory builds a Provider from a ProviderConfig.
type Factory func(cfg ProviderConfig) (Provider, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a provider factory available under tag. It is intended to
// be called from provider package init functions, in the manner of
// database/sql drivers. Register panics on an empty tag, a nil factory or
// a duplicate registration.
func Register(tag string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if tag == "" {
		panic("llm: Register with empty tag")
	}
	if f == nil {
		panic("llm: Register with nil factory")
	}
	if _, dup := registry[tag]; dup {
		panic("llm: Register called twice for provider " + tag)
	}
	registry[tag] = f
}

// NewProvider resolves tag against the registry and constructs the backend.
func NewProvider(tag string, cfg ProviderConfig) (Provider, error) {
	registryMu.RLock()
	f, ok := registry[tag]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("llm: unknown provider %q (forgotten import?)", tag)
	}
	return f(cfg)
}

// Providers returns the sorted tags of all registered providers.
func Providers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
