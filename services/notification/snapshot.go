package notification

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cespare/xxhash"
	"github.com/heraldhq/herald/auth"
	"github.com/heraldhq/herald/notify"
	"github.com/mitchellh/copystructure"
	"github.com/pkg/errors"
)

// Digest identifies the content of a snapshot.
type Digest string

// Snapshot is the complete notification configuration.
type Snapshot struct {
	Sendmail []SendmailEndpoint `toml:"sendmail,omitempty" json:"sendmail,omitempty"`
	Gotify   []GotifyEndpoint   `toml:"gotify,omitempty" json:"gotify,omitempty"`
	SMTP     []SMTPEndpoint     `toml:"smtp,omitempty" json:"smtp,omitempty"`
	Matchers []MatcherConfig    `toml:"matcher,omitempty" json:"matcher,omitempty"`
}

const defaultMatcher = "default-matcher"

// DefaultSnapshot is the configuration in effect before anything was written:
// every notification is mailed to root.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Sendmail: []SendmailEndpoint{{
			Name:       notify.DefaultTarget,
			MailtoUser: []string{"root@pam"},
			Comment:    "Send mails to root@pam's email address",
		}},
		Matchers: []MatcherConfig{{
			Name:    defaultMatcher,
			Target:  []string{notify.DefaultTarget},
			Comment: "Route all notifications to mail-to-root",
		}},
	}
}

// Parse decodes a persisted document. Unknown keys, invalid entities and duplicate
// names are reported as ErrParse.
func Parse(data []byte) (Snapshot, error) {
	var s Snapshot
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return Snapshot{}, errors.Wrapf(ErrParse, "%v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Snapshot{}, errors.Wrapf(ErrParse, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, errors.Wrapf(ErrParse, "%v", err)
	}
	return s, nil
}

// Marshal returns the canonical encoding of the snapshot.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, errors.Wrap(err, "encoding configuration")
	}
	return buf.Bytes(), nil
}

// Digest returns the 64-bit xxhash of the canonical encoding as 16 hex characters.
func (s Snapshot) Digest() Digest {
	data, err := s.Marshal()
	if err != nil {
		// Snapshots only hold strings, ints and bools which always encode.
		panic(err)
	}
	return digestOf(data)
}

func digestOf(data []byte) Digest {
	return Digest(fmt.Sprintf("%016x", xxhash.Sum64(data)))
}

// Copy returns a deep copy of the snapshot.
func (s Snapshot) Copy() (Snapshot, error) {
	c, err := copystructure.Copy(s)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "copying configuration")
	}
	return c.(Snapshot), nil
}

// Validate checks every entity and that names are unique.
func (s Snapshot) Validate() error {
	seen := make(map[string]Kind)
	for _, e := range s.Endpoints() {
		if err := e.Validate(); err != nil {
			return err
		}
		if k, ok := seen[e.EndpointName()]; ok {
			return conflictErrorf("duplicate endpoint name %q, already used by a %s endpoint", e.EndpointName(), k)
		}
		seen[e.EndpointName()] = e.Kind()
	}
	matchers := make(map[string]bool)
	for _, m := range s.Matchers {
		if err := m.Validate(); err != nil {
			return err
		}
		if matchers[m.Name] {
			return conflictErrorf("duplicate matcher name %q", m.Name)
		}
		matchers[m.Name] = true
	}
	return nil
}

// Endpoints returns all endpoints, sendmail first, then gotify, then smtp.
func (s Snapshot) Endpoints() []Endpoint {
	es := make([]Endpoint, 0, len(s.Sendmail)+len(s.Gotify)+len(s.SMTP))
	for _, e := range s.Sendmail {
		es = append(es, e)
	}
	for _, e := range s.Gotify {
		es = append(es, e)
	}
	for _, e := range s.SMTP {
		es = append(es, e)
	}
	return es
}

func (s Snapshot) Endpoint(name string) (Endpoint, error) {
	for _, e := range s.Endpoints() {
		if e.EndpointName() == name {
			return e, nil
		}
	}
	return nil, notFoundErrorf("endpoint %q", name)
}

func (s Snapshot) SendmailEndpoint(name string) (SendmailEndpoint, error) {
	if i := indexOf(s.Sendmail, name); i >= 0 {
		return s.Sendmail[i], nil
	}
	return SendmailEndpoint{}, notFoundErrorf("sendmail endpoint %q", name)
}

func (s Snapshot) GotifyEndpoint(name string) (GotifyEndpoint, error) {
	if i := indexOf(s.Gotify, name); i >= 0 {
		return s.Gotify[i], nil
	}
	return GotifyEndpoint{}, notFoundErrorf("gotify endpoint %q", name)
}

func (s Snapshot) SMTPEndpoint(name string) (SMTPEndpoint, error) {
	if i := indexOf(s.SMTP, name); i >= 0 {
		return s.SMTP[i], nil
	}
	return SMTPEndpoint{}, notFoundErrorf("smtp endpoint %q", name)
}

func (s Snapshot) Matcher(name string) (MatcherConfig, error) {
	for _, m := range s.Matchers {
		if m.Name == name {
			return m, nil
		}
	}
	return MatcherConfig{}, notFoundErrorf("matcher %q", name)
}

// Rules returns the evaluable rules in stored order.
func (s Snapshot) Rules() ([]notify.Rule, error) {
	rules := make([]notify.Rule, 0, len(s.Matchers))
	for _, m := range s.Matchers {
		r, err := m.Rule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// VisibleEndpoints returns the redacted endpoints the caller may see.
func (s Snapshot) VisibleEndpoints(check auth.CheckFunc) []Endpoint {
	visible := auth.Filter(s.Endpoints(), Endpoint.EndpointName, check)
	for i, e := range visible {
		visible[i] = e.Redacted()
	}
	return visible
}

// VisibleMatchers returns the matchers the caller may see.
func (s Snapshot) VisibleMatchers(check auth.CheckFunc) []MatcherConfig {
	return auth.Filter(s.Matchers, func(m MatcherConfig) string { return m.Name }, check)
}

// referencedBy returns the matchers targeting the endpoint.
func (s Snapshot) referencedBy(endpoint string) []string {
	var names []string
	for _, m := range s.Matchers {
		for _, t := range m.Target {
			if t == endpoint {
				names = append(names, m.Name)
				break
			}
		}
	}
	return names
}

func indexOf[E Endpoint](es []E, name string) int {
	for i, e := range es {
		if e.EndpointName() == name {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}
