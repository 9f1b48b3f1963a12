package event

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a canonical JSON encoding of the event, used
// for content hashing in the journal. Canonical means:
//   - object keys in sorted order
//   - strings NFC normalized at the serialization boundary
//   - no HTML escaping (< > & stay literal)
//
// Two events that decode to the same logical record always produce the
// same bytes, regardless of the map iteration order or the Unicode
// composition of their source text.
func (e Event) MarshalCanonical() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString(`"args":[`)
	for i, a := range e.Args {
		if i > 0 {
			buf.WriteByte(',')
		}
		s, err := canonicalString(a)
		if err != nil {
			return nil, err
		}
		buf.Write(s)
	}
	buf.WriteByte(']')

	buf.WriteString(`,"kv":{`)
	for i, k := range sortedKeys(e.KV) {
		if i > 0 {
			buf.WriteByte(',')
		}
		ck, err := canonicalString(k)
		if err != nil {
			return nil, err
		}
		cv, err := canonicalString(e.KV[k])
		if err != nil {
			return nil, err
		}
		buf.Write(ck)
		buf.WriteByte(':')
		buf.Write(cv)
	}
	buf.WriteByte('}')

	buf.WriteString(`,"tag":`)
	ct, err := canonicalString(string(e.Tag))
	if err != nil {
		return nil, err
	}
	buf.Write(ct)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Hash returns the hex sha256 of the canonical encoding.
func (e Event) Hash() (string, error) {
	data, err := e.MarshalCanonical()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalString encodes s as a JSON string with NFC normalization and
// HTML escaping disabled.
func canonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a trailing newline, remove it.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
