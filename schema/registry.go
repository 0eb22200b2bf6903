package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/glimte/iac-go/contracts"
)

// Transformer rewrites a decoded payload into its final shape. It runs after
// a candidate schema decoded successfully and must be pure.
type Transformer func(payload interface{}) (interface{}, error)

// Entry is one candidate schema for a registry key
type Entry struct {
	Item      *Item
	Transform Transformer
}

// EntryOption configures a registered entry
type EntryOption func(*Entry)

// WithTransformer attaches a post-decode transformer to the entry
func WithTransformer(fn Transformer) EntryOption {
	return func(e *Entry) {
		e.Transform = fn
	}
}

// Mode selects how many schemas a key can hold
type Mode uint8

const (
	// ModeMultiple keeps an ordered list of candidate schemas per key
	ModeMultiple Mode = iota
	// ModeSingle allows exactly one schema per key; duplicates are rejected
	ModeSingle
)

// erc20Marker identifies token sub-protocols sharing one ERC20 schema
const erc20Marker = "erc20"

// Registry maps (message type, protocol) keys to schemas. Registration
// happens once at startup; after Seal the registry is read-only.
type Registry struct {
	mode    Mode
	entries map[string][]*Entry
	sealed  bool
	logger  *slog.Logger
	mu      sync.RWMutex
}

// RegistryOption configures the registry
type RegistryOption func(*Registry)

// WithMode sets the registry mode
func WithMode(mode Mode) RegistryOption {
	return func(r *Registry) {
		r.mode = mode
	}
}

// WithRegistryLogger sets the logger
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry holding multiple candidates per key
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		mode:    ModeMultiple,
		entries: make(map[string][]*Entry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewLegacyRegistry creates a registry with one schema per key
func NewLegacyRegistry(opts ...RegistryOption) *Registry {
	return NewRegistry(append([]RegistryOption{WithMode(ModeSingle)}, opts...)...)
}

// Mode returns the registry mode
func (r *Registry) Mode() Mode {
	return r.mode
}

// Key builds the registry key for a message type and protocol
func Key(messageType contracts.MessageType, protocol string) string {
	key := strconv.FormatUint(uint64(messageType), 10)
	if protocol == "" {
		return key
	}
	return key + "-" + protocol
}

// Register adds a schema for a message type and protocol. An empty protocol
// registers the protocol-agnostic schema.
func (r *Registry) Register(messageType contracts.MessageType, protocol string, item *Item, opts ...EntryOption) error {
	if item == nil {
		return fmt.Errorf("%w: schema cannot be nil", ErrInvalidDefinition)
	}
	if err := item.Validate(); err != nil {
		return err
	}

	entry := &Entry{Item: item}
	for _, opt := range opts {
		opt(entry)
	}

	key := Key(messageType, protocol)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %s", ErrRegistrySealed, key)
	}

	existing := r.entries[key]
	if r.mode == ModeSingle {
		if len(existing) > 0 {
			return fmt.Errorf("%w: %s", ErrSchemaAlreadyExists, key)
		}
		r.entries[key] = []*Entry{entry}
		return nil
	}

	for _, e := range existing {
		if e.Item.Equal(item) && e.Transform == nil && entry.Transform == nil {
			// Same schema, ignore
			return nil
		}
	}
	r.entries[key] = append(existing, entry)
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(messageType contracts.MessageType, protocol string, item *Item, opts ...EntryOption) {
	if err := r.Register(messageType, protocol, item, opts...); err != nil {
		panic(err)
	}
}

// Seal ends the registration phase
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.sealed {
		r.sealed = true
		r.logger.Debug("schema registry sealed", "keys", len(r.entries))
	}
}

// Sealed reports whether the registry is read-only
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// CandidateKeys lists the keys tried for a lookup, most specific first
func CandidateKeys(messageType contracts.MessageType, protocol string) []string {
	keys := []string{Key(messageType, protocol)}
	add := func(key string) {
		for _, k := range keys {
			if k == key {
				return
			}
		}
		keys = append(keys, key)
	}

	if protocol != "" {
		parts := strings.Split(protocol, contracts.SubProtocolSeparator)
		if len(parts) > 2 && parts[1] == erc20Marker {
			add(Key(messageType, parts[0]+contracts.SubProtocolSeparator+erc20Marker))
		}
		if len(parts) > 1 {
			add(Key(messageType, parts[0]))
		}
		add(Key(messageType, ""))
	}
	return keys
}

// Resolve returns the candidate schemas for a message type and protocol, in
// registration order. A legacy registry always returns exactly one entry.
func (r *Registry) Resolve(messageType contracts.MessageType, protocol string) ([]*Entry, error) {
	keys := CandidateKeys(messageType, protocol)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, key := range keys {
		if entries := r.entries[key]; len(entries) > 0 {
			out := make([]*Entry, len(entries))
			copy(out, entries)
			return out, nil
		}
	}
	return nil, &LookupError{Type: messageType, Protocol: protocol, Keys: keys}
}

// Has reports whether any schema resolves for the type and protocol
func (r *Registry) Has(messageType contracts.MessageType, protocol string) bool {
	_, err := r.Resolve(messageType, protocol)
	return err == nil
}

// Keys returns all registered keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
