// Package payload builds and parses the gateway's merchant data string,
// a bare "k1=v1&k2=v2" format with no escaping on the outbound side.
package payload

import (
	"net/url"
	"strings"
)

// Fields is an ordered key-value set. The gateway is sensitive to field
// order on the outbound request, so insertion order is preserved.
type Fields struct {
	keys   []string
	values map[string]string
}

func NewFields() *Fields {
	return &Fields{values: make(map[string]string)}
}

// Set appends the key on first use and overwrites on repeats, keeping
// the original position. Values must not contain '&' or '='; the wire
// format has no escaping and the caller owns that constraint.
func (f *Fields) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

func (f *Fields) Get(key string) string {
	return f.values[key]
}

func (f *Fields) Len() int {
	return len(f.keys)
}

// Format joins the fields as k1=v1&k2=v2 in insertion order with no
// trailing separator.
func (f *Fields) Format() string {
	var b strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(f.values[k])
	}
	return b.String()
}

// Parse splits a decrypted gateway response into a map. Segments
// without exactly one '=' are dropped silently; the gateway sometimes
// appends malformed trailing segments. Values are percent-decoded and
// the last occurrence of a duplicate key wins.
func Parse(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		kv := strings.Split(pair, "=")
		if len(kv) != 2 {
			continue
		}
		v, err := url.QueryUnescape(kv[1])
		if err != nil {
			v = kv[1]
		}
		out[kv[0]] = v
	}
	return out
}
