package main

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// propertiesFlag collects repeated key=value flags. Values are not split on commas,
// a key given more than once becomes a list.
type propertiesFlag struct {
	values map[string]interface{}
}

func newPropertiesFlag() *propertiesFlag {
	return &propertiesFlag{values: make(map[string]interface{})}
}

func (f *propertiesFlag) Set(s string) error {
	eq := strings.IndexByte(s, '=')
	if eq <= 0 {
		return errors.Errorf("invalid property %q, expected key=value", s)
	}
	k, v := s[:eq], s[eq+1:]
	switch cur := f.values[k].(type) {
	case nil:
		f.values[k] = v
	case string:
		f.values[k] = []interface{}{cur, v}
	case []interface{}:
		f.values[k] = append(cur, v)
	}
	return nil
}

func (f *propertiesFlag) String() string {
	if f == nil {
		return ""
	}
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// fieldsFlag collects repeated key=value event fields.
type fieldsFlag struct {
	values map[string]string
}

func newFieldsFlag() *fieldsFlag {
	return &fieldsFlag{values: make(map[string]string)}
}

func (f *fieldsFlag) Set(s string) error {
	eq := strings.IndexByte(s, '=')
	if eq <= 0 {
		return errors.Errorf("invalid field %q, expected key=value", s)
	}
	f.values[s[:eq]] = s[eq+1:]
	return nil
}

func (f *fieldsFlag) String() string {
	if f == nil {
		return ""
	}
	pairs := make([]string, 0, len(f.values))
	for k, v := range f.values {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
