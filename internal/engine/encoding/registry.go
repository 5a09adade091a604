package encoding

import (
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Registry resolves encoding names. Names are matched case-insensitively.
// Names the registry does not know directly are resolved through the IANA
// index of x/text, so "latin1" and "cp1252" find their code pages.
type Registry struct {
	mu        sync.RWMutex
	byName    map[string]Encoding
	byCharmap map[*charmap.Charmap]Encoding
	order     []Encoding
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]Encoding),
		byCharmap: make(map[*charmap.Charmap]Encoding),
	}
}

// NewDefaultRegistry creates a registry holding the built-in encodings and
// every single-byte code page of x/text.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(UTF8, "utf8", "CP65001")
	_ = r.Register(USASCII, "ASCII", "ANSI_X3.4-1968", "646")
	_ = r.Register(Binary, "BINARY")

	for _, e := range charmap.All {
		cm, ok := e.(*charmap.Charmap)
		if !ok {
			continue
		}
		enc := newCharmapEncoding(cm)
		if err := r.Register(enc, cm.String()); err != nil {
			continue
		}
		r.byCharmap[cm] = enc
	}
	return r
}

// Default is the process-wide registry.
var Default = NewDefaultRegistry()

// Register adds enc under its name and the given aliases.
func (r *Registry) Register(enc Encoding, aliases ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeName(enc.Name())
	if _, exists := r.byName[key]; exists {
		return errors.Wrapf(ErrDuplicateEncoding, "%s", enc.Name())
	}
	r.byName[key] = enc
	for _, alias := range aliases {
		k := normalizeName(alias)
		if _, exists := r.byName[k]; !exists {
			r.byName[k] = enc
		}
	}
	r.order = append(r.order, enc)
	return nil
}

// Lookup returns the encoding registered under name.
func (r *Registry) Lookup(name string) (Encoding, error) {
	key := normalizeName(name)

	r.mu.RLock()
	enc, ok := r.byName[key]
	r.mu.RUnlock()
	if ok {
		return enc, nil
	}

	ianaEnc, err := ianaindex.IANA.Encoding(name)
	if err != nil || ianaEnc == nil {
		return nil, errors.Wrapf(ErrUnknownEncoding, "%q", name)
	}
	if ianaEnc == unicode.UTF8 {
		return UTF8, nil
	}
	if cm, ok := ianaEnc.(*charmap.Charmap); ok {
		r.mu.RLock()
		enc, ok = r.byCharmap[cm]
		r.mu.RUnlock()
		if ok {
			return enc, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownEncoding, "%q has no byte-level classifier", name)
}

// Encodings returns the registered encodings sorted by name.
func (r *Registry) Encodings() []Encoding {
	r.mu.RLock()
	out := make([]Encoding, len(r.order))
	copy(out, r.order)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Lookup resolves name in the Default registry.
func Lookup(name string) (Encoding, error) {
	return Default.Lookup(name)
}

// MustLookup is like Lookup but panics if name is unknown.
func MustLookup(name string) Encoding {
	enc, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return enc
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
