package sgfdata

import (
	"iter"
	"slices"

	json "github.com/goccy/go-json"
)

// Record is an insertion-ordered map from identifier to Value. Keys are
// unique; setting an existing key keeps its position.
//
// The zero Record is empty and ready to use.
type Record struct {
	keys []string
	vals map[string]Value
}

// NewRecord returns a Record holding the given key/value pairs in order.
func NewRecord(pairs ...Pair) *Record {
	r := &Record{}
	for _, p := range pairs {
		r.Set(p.Key, p.Value)
	}
	return r
}

// Pair is one key/value entry.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for Pair{Key: k, Value: v}.
func P(k string, v Value) Pair { return Pair{Key: k, Value: v} }

// Len returns the number of keys.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil || r.vals == nil {
		return Value{}, false
	}
	v, ok := r.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set stores v under key, appending key when new.
func (r *Record) Set(key string, v Value) {
	if r.vals == nil {
		r.vals = make(map[string]Value)
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = v
}

// Delete removes key; it is a no-op when key is absent.
func (r *Record) Delete(key string) {
	if r == nil {
		return
	}
	if _, ok := r.vals[key]; !ok {
		return
	}
	delete(r.vals, key)
	if i := slices.Index(r.keys, key); i >= 0 {
		r.keys = slices.Delete(r.keys, i, i+1)
	}
}

// Rename moves the value of from to to, keeping the position of from. An
// existing value under to is replaced and its old position dropped.
func (r *Record) Rename(from, to string) {
	if r == nil || from == to {
		return
	}
	v, ok := r.vals[from]
	if !ok {
		return
	}
	if _, exists := r.vals[to]; exists {
		r.Delete(to)
	}
	i := slices.Index(r.keys, from)
	r.keys[i] = to
	delete(r.vals, from)
	r.vals[to] = v
}

// Keys returns a copy of the keys in insertion order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.keys)
}

// All iterates over the entries in insertion order.
func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if r == nil {
			return
		}
		for _, k := range r.keys {
			if !yield(k, r.vals[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{keys: slices.Clone(r.keys), vals: make(map[string]Value, len(r.vals))}
	for k, v := range r.vals {
		out.vals[k] = v
	}
	return out
}

// Equal reports whether both records hold the same keys in the same order
// with equal values.
func (r *Record) Equal(o *Record) bool {
	if r.Len() != o.Len() {
		return false
	}
	for i, k := range r.Keys() {
		if o.keys[i] != k {
			return false
		}
		if !r.vals[k].Equal(o.vals[k]) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the record as a JSON object in key order.
func (r *Record) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range r.Keys() {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := r.vals[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf = append(append(append(buf, kb...), ':'), vb...)
	}
	return append(buf, '}'), nil
}
