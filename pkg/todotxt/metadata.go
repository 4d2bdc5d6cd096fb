package todotxt

// Field is one key:value metadata pair.
type Field struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Metadata is an ordered set of key:value pairs with unique keys. Order is
// the order in which keys were first set, which is also the order they are
// formatted in.
type Metadata []Field

func (m Metadata) Get(key string) (string, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place or appends a new pair.
func (m *Metadata) Set(key, value string) {
	for i := range *m {
		if (*m)[i].Key == key {
			(*m)[i].Value = value
			return
		}
	}
	*m = append(*m, Field{Key: key, Value: value})
}

// Merge sets every pair of other on m, so values in other win.
func (m *Metadata) Merge(other Metadata) {
	for _, f := range other {
		m.Set(f.Key, f.Value)
	}
}

func (m Metadata) Len() int {
	return len(m)
}

// Map returns an unordered copy.
func (m Metadata) Map() map[string]string {
	out := make(map[string]string, len(m))
	for _, f := range m {
		out[f.Key] = f.Value
	}
	return out
}

func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	copy(out, m)
	return out
}
