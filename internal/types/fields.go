package types

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Fields holds top-level keys a document carries beyond the modelled ones.
// They survive decode, merge and encode untouched.
type Fields map[string]json.RawMessage

// jsonKeys lists the json names of a struct type's exported fields.
func jsonKeys(t reflect.Type) map[string]struct{} {
	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		keys[name] = struct{}{}
	}
	return keys
}

// extraFields returns the keys of a JSON object that are not in known.
func extraFields(data []byte, known map[string]struct{}) (Fields, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra Fields
	for k, v := range all {
		if _, ok := known[k]; ok {
			continue
		}
		if extra == nil {
			extra = make(Fields)
		}
		extra[k] = v
	}
	return extra, nil
}

// marshalWithExtra encodes v and adds extra keys that v does not already set.
func marshalWithExtra(v any, extra Fields) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return base, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(base, &all); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}
