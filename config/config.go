// Package config loads typed configuration from a file with viper,
// binds environment overrides, and reloads on file changes.
package config

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// reloadDebounce coalesces the bursts of write events some editors emit.
const reloadDebounce = 100 * time.Millisecond

// Store holds the current value of a file-backed configuration of type T.
type Store[T any] struct {
	v        *viper.Viper
	mu       sync.RWMutex
	value    T
	onChange []func(old, new T)
}

type Option[T any] func(*Store[T])

// WithDefaults seeds default values applied beneath the file contents.
func WithDefaults[T any](defaults map[string]any) Option[T] {
	return func(s *Store[T]) {
		for k, v := range defaults {
			s.v.SetDefault(k, v)
		}
	}
}

// WithEnv binds environment variables with the given prefix; dots in keys
// map to underscores (e.g. prefix OCI_GENAI + key max_tokens reads
// OCI_GENAI_MAX_TOKENS).
func WithEnv[T any](prefix string) Option[T] {
	return func(s *Store[T]) {
		s.v.SetEnvPrefix(prefix)
		s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		s.v.AutomaticEnv()
	}
}

// Load reads path into a Store and starts watching it for changes. An
// empty path skips the file entirely: the value comes from defaults and
// bound environment variables alone, and nothing is watched.
func Load[T any](path string, opts ...Option[T]) (*Store[T], error) {
	s := &Store[T]{v: viper.New()}
	if path != "" {
		s.v.SetConfigFile(path)
	}
	for _, opt := range opts {
		opt(s)
	}

	if path != "" {
		if err := s.v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	val, err := unmarshal[T](s.v)
	if err != nil {
		return nil, err
	}
	s.value = val

	if path != "" {
		s.watch()
	}
	return s, nil
}

// Get returns a deep copy of the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopy(s.value)
}

// OnChange registers a callback invoked after every successful reload
// that produced a different value.
func (s *Store[T]) OnChange(fn func(old, new T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *Store[T]) watch() {
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	s.v.OnConfigChange(func(_ fsnotify.Event) {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(reloadDebounce, s.reload)
	})
	s.v.WatchConfig()
}

// reload re-reads the file; a file that no longer parses keeps the
// previous value.
func (s *Store[T]) reload() {
	s.mu.Lock()
	old := deepCopy(s.value)
	if err := s.v.ReadInConfig(); err != nil {
		s.mu.Unlock()
		return
	}
	val, err := unmarshal[T](s.v)
	if err != nil {
		s.mu.Unlock()
		return
	}
	s.value = val
	callbacks := make([]func(old, new T), len(s.onChange))
	copy(callbacks, s.onChange)
	fresh := deepCopy(val)
	s.mu.Unlock()

	if reflect.DeepEqual(old, fresh) {
		return
	}
	for _, fn := range callbacks {
		func() {
			defer func() { _ = recover() }()
			fn(old, fresh)
		}()
	}
}

func unmarshal[T any](v *viper.Viper) (T, error) {
	var val T
	if err := v.Unmarshal(&val); err != nil {
		var zero T
		return zero, err
	}
	return val, nil
}

// deepCopy round-trips through JSON; configuration structs are plain data.
func deepCopy[T any](src T) T {
	var dst T
	data, err := json.Marshal(src)
	if err != nil {
		return src
	}
	if err := json.Unmarshal(data, &dst); err != nil {
		return src
	}
	return dst
}
