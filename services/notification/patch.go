package notification

import (
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ChangeOp is the kind of change made to a single property.
type ChangeOp int

const (
	Unchanged ChangeOp = iota
	SetOp
	ClearOp
)

func (o ChangeOp) String() string {
	switch o {
	case SetOp:
		return "set"
	case ClearOp:
		return "clear"
	default:
		return "unchanged"
	}
}

// Change is the change made to a single property.
type Change struct {
	Op    ChangeOp
	Value interface{}
}

// Patch maps property names to changes. Absent properties are unchanged.
type Patch map[string]Change

// UpdateRequest describes a partial update of a named entity.
type UpdateRequest struct {
	Name   string
	Set    map[string]interface{}
	Delete []string
	// Digest, when not empty, must match the digest of the current configuration.
	Digest Digest
}

// Patch converts the request into a Patch.
func (r UpdateRequest) Patch() (Patch, error) {
	return NewPatch(r.Set, r.Delete)
}

// NewPatch builds a patch setting and clearing properties.
// A property may not be both set and cleared.
func NewPatch(set map[string]interface{}, del []string) (Patch, error) {
	p := make(Patch, len(set)+len(del))
	for k, v := range set {
		if v == nil {
			return nil, validationErrorf("property %q: missing value", k)
		}
		p[k] = Change{Op: SetOp, Value: v}
	}
	for _, k := range del {
		if c, ok := p[k]; ok && c.Op == SetOp {
			return nil, validationErrorf("property %q is both set and deleted", k)
		}
		p[k] = Change{Op: ClearOp}
	}
	return p, nil
}

// Get returns the change of the property.
func (p Patch) Get(property string) Change {
	return p[property]
}

// Properties returns the changed property names, sorted.
func (p Patch) Properties() []string {
	props := make([]string, 0, len(p))
	for k := range p {
		props = append(props, k)
	}
	sort.Strings(props)
	return props
}

// Apply applies the patch to the struct pointed to by target.
// Properties are matched by toml name, the name property is immutable.
func (p Patch) Apply(target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return validationErrorf("cannot patch %T", target)
	}
	fields := propertyFields(rv.Elem())
	for _, prop := range p.Properties() {
		c := p[prop]
		if prop == "name" {
			return validationErrorf("property %q cannot be changed", prop)
		}
		f, ok := fields[prop]
		if !ok {
			return validationErrorf("unknown property %q", prop)
		}
		switch c.Op {
		case SetOp:
			v, err := decodeProperty(c.Value, f.Type())
			if err != nil {
				return validationErrorf("property %q: %v", prop, err)
			}
			f.Set(v)
		case ClearOp:
			f.Set(reflect.Zero(f.Type()))
		}
	}
	return nil
}

// propertyFields indexes the settable fields of v by their toml name.
func propertyFields(v reflect.Value) map[string]reflect.Value {
	t := v.Type()
	fields := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		name := strings.Split(sf.Tag.Get("toml"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		fields[name] = v.Field(i)
	}
	return fields
}

func decodeProperty(value interface{}, t reflect.Type) (reflect.Value, error) {
	ptr := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           ptr.Interface(),
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(value); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// NewEndpoint builds an endpoint of the kind from property values.
func NewEndpoint(kind Kind, name string, props map[string]interface{}) (Endpoint, error) {
	p, err := NewPatch(props, nil)
	if err != nil {
		return nil, err
	}
	switch kind {
	case SendmailKind:
		e := SendmailEndpoint{Name: name}
		err = p.Apply(&e)
		return e, err
	case GotifyKind:
		e := GotifyEndpoint{Name: name}
		err = p.Apply(&e)
		return e, err
	case SMTPKind:
		e := SMTPEndpoint{Name: name}
		err = p.Apply(&e)
		return e, err
	default:
		return nil, validationErrorf("unknown endpoint kind %q", kind)
	}
}

// NewMatcher builds a matcher from property values.
func NewMatcher(name string, props map[string]interface{}) (MatcherConfig, error) {
	m := MatcherConfig{Name: name}
	p, err := NewPatch(props, nil)
	if err != nil {
		return m, err
	}
	err = p.Apply(&m)
	return m, err
}
