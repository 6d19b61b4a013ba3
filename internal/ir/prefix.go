package ir

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/tidwall/btree"
	"gopkg.in/yaml.v3"
)

// ErrDuplicatePrefix is returned when a short name is declared twice with
// different namespaces. Re-declaring the same namespace is accepted.
var ErrDuplicatePrefix = errors.New("duplicate prefix")

// ErrInvalidPrefix is returned when a short name cannot be written as a
// SPARQL prefix (see ValidPrefixName).
var ErrInvalidPrefix = errors.New("invalid prefix name")

// ValidPrefixName reports whether short can appear before ':' in SPARQL.
// The empty name is valid. Otherwise short starts with a letter, continues
// with letters, digits, '_', '-' or '.', and does not end with '.'.
func ValidPrefixName(short string) bool {
	if short == "" {
		return true
	}
	if strings.HasSuffix(short, ".") {
		return false
	}
	for i, r := range short {
		switch {
		case unicode.IsLetter(r):
		case i == 0:
			return false
		case unicode.IsDigit(r), r == '_', r == '-', r == '.':
		default:
			return false
		}
	}
	return true
}

// PrefixTable maps short names to namespace IRIs.
//
// Iteration is ordered by short name so every rendering of a table is
// deterministic. The empty short name is the default prefix used by bare
// local names in path expressions.
//
// A PrefixTable must not be copied by value after first use; pass *PrefixTable.
// A nil *PrefixTable behaves as an empty table for all read methods.
type PrefixTable struct {
	m btree.Map[string, string]
}

// NewPrefixTable creates an empty table.
func NewPrefixTable() *PrefixTable {
	return &PrefixTable{}
}

// PrefixTableOf builds a table from a plain map. Maps cannot hold duplicate
// keys, so this never fails. Short names are not checked; use Add for
// untrusted input.
func PrefixTableOf(m map[string]string) *PrefixTable {
	t := NewPrefixTable()
	for short, ns := range m {
		t.m.Set(short, ns)
	}
	return t
}

// Add declares short -> namespace.
// Returns ErrInvalidPrefix if short is not a valid prefix name and
// ErrDuplicatePrefix if short is already bound to a different namespace.
func (t *PrefixTable) Add(short, namespace string) error {
	if !ValidPrefixName(short) {
		return fmt.Errorf("%w: %q", ErrInvalidPrefix, short)
	}
	if existing, ok := t.m.Get(short); ok {
		if existing == namespace {
			return nil
		}
		return fmt.Errorf("%w: %q bound to <%s>, redeclared as <%s>", ErrDuplicatePrefix, short, existing, namespace)
	}
	t.m.Set(short, namespace)
	return nil
}

// Lookup returns the namespace bound to short.
func (t *PrefixTable) Lookup(short string) (string, bool) {
	if t == nil {
		return "", false
	}
	return t.m.Get(short)
}

// Invalid returns the short names that ValidPrefixName rejects, in order.
// Only tables built with PrefixTableOf can hold them.
func (t *PrefixTable) Invalid() []string {
	var out []string
	t.Each(func(short, _ string) {
		if !ValidPrefixName(short) {
			out = append(out, short)
		}
	})
	return out
}

// Len returns the number of declared prefixes.
func (t *PrefixTable) Len() int {
	if t == nil {
		return 0
	}
	return t.m.Len()
}

// Each calls fn for every prefix in short-name order.
func (t *PrefixTable) Each(fn func(short, namespace string)) {
	if t == nil {
		return
	}
	t.m.Scan(func(short, ns string) bool {
		fn(short, ns)
		return true
	})
}

// Map returns the table as a plain map.
func (t *PrefixTable) Map() map[string]string {
	out := make(map[string]string, t.Len())
	t.Each(func(short, ns string) {
		out[short] = ns
	})
	return out
}

// Clone returns an independent copy.
func (t *PrefixTable) Clone() *PrefixTable {
	c := NewPrefixTable()
	t.Each(func(short, ns string) {
		c.m.Set(short, ns)
	})
	return c
}

// Merge adds every prefix of other into t, stopping at the first conflict
// or invalid name.
func (t *PrefixTable) Merge(other *PrefixTable) error {
	var err error
	other.Each(func(short, ns string) {
		if err == nil {
			err = t.Add(short, ns)
		}
	})
	return err
}

// Shorten returns the prefixed form of iri using the longest matching
// namespace, or ok=false if no namespace matches with a usable local part.
func (t *PrefixTable) Shorten(iri string) (prefixed string, ok bool) {
	best := -1
	t.Each(func(short, ns string) {
		if ns == "" || !strings.HasPrefix(iri, ns) || len(ns) <= best {
			return
		}
		local := iri[len(ns):]
		if local == "" || strings.ContainsAny(local, "/#?:") {
			return
		}
		best = len(ns)
		prefixed = short + ":" + local
	})
	return prefixed, best >= 0
}

// MarshalJSON encodes the table as an object in short-name order.
func (t *PrefixTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	var err error
	t.Each(func(short, ns string) {
		if err != nil {
			return
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		var k, v []byte
		if k, err = json.Marshal(short); err != nil {
			return
		}
		if v, err = json.Marshal(ns); err != nil {
			return
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, rejecting conflicting duplicate keys that
// a plain map would silently overwrite.
func (t *PrefixTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("prefixes: expected object")
	}
	*t = PrefixTable{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		var ns string
		if err := dec.Decode(&ns); err != nil {
			return fmt.Errorf("prefix %q: %w", keyTok, err)
		}
		if err := t.Add(keyTok.(string), ns); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML implements yaml.Marshaler.
func (t *PrefixTable) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	t.Each(func(short, ns string) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: short},
			&yaml.Node{Kind: yaml.ScalarNode, Value: ns},
		)
	})
	return node, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *PrefixTable) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: prefixes must be a mapping", node.Line)
	}
	*t = PrefixTable{}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: namespace for prefix %q must be a string", val.Line, key.Value)
		}
		if err := t.Add(key.Value, val.Value); err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}
	}
	return nil
}
