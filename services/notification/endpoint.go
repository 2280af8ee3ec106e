package notification

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the type of an endpoint.
type Kind string

const (
	SendmailKind Kind = "sendmail"
	GotifyKind   Kind = "gotify"
	SMTPKind     Kind = "smtp"
)

// Kinds lists the endpoint kinds in the order they are stored.
var Kinds = []Kind{SendmailKind, GotifyKind, SMTPKind}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == strings.ToLower(s) {
			return k, nil
		}
	}
	return "", validationErrorf("unknown endpoint kind %q", s)
}

const maxNameLength = 64

var validName = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9._-]*$`)

func validateName(name string) error {
	if name == "" {
		return validationErrorf("missing name")
	}
	if len(name) > maxNameLength {
		return validationErrorf("name %q is longer than %d characters", name, maxNameLength)
	}
	if !validName.MatchString(name) {
		return validationErrorf("invalid name %q", name)
	}
	return nil
}

// Endpoint is a named delivery channel.
// Endpoint names share one namespace across all kinds.
type Endpoint interface {
	EndpointName() string
	Kind() Kind
	Validate() error
	// Redacted returns a copy of the endpoint with secrets removed.
	Redacted() Endpoint
}

type SendmailEndpoint struct {
	Name        string   `toml:"name" json:"name"`
	Mailto      []string `toml:"mailto,omitempty" json:"mailto,omitempty"`
	MailtoUser  []string `toml:"mailto-user,omitempty" json:"mailto-user,omitempty"`
	FromAddress string   `toml:"from-address,omitempty" json:"from-address,omitempty"`
	Author      string   `toml:"author,omitempty" json:"author,omitempty"`
	Comment     string   `toml:"comment,omitempty" json:"comment,omitempty"`
}

func (e SendmailEndpoint) EndpointName() string { return e.Name }
func (e SendmailEndpoint) Kind() Kind           { return SendmailKind }
func (e SendmailEndpoint) Redacted() Endpoint   { return e }

func (e SendmailEndpoint) Validate() error {
	if err := validateName(e.Name); err != nil {
		return err
	}
	if len(e.Mailto) == 0 && len(e.MailtoUser) == 0 {
		return validationErrorf("sendmail endpoint %q: must specify 'mailto' or 'mailto-user'", e.Name)
	}
	if err := validateAddresses(e.Mailto...); err != nil {
		return errors.Wrapf(err, "sendmail endpoint %q", e.Name)
	}
	if err := validateUsers(e.MailtoUser...); err != nil {
		return errors.Wrapf(err, "sendmail endpoint %q", e.Name)
	}
	if e.FromAddress != "" {
		if err := validateAddresses(e.FromAddress); err != nil {
			return errors.Wrapf(err, "sendmail endpoint %q", e.Name)
		}
	}
	return nil
}

type GotifyEndpoint struct {
	Name    string `toml:"name" json:"name"`
	Server  string `toml:"server" json:"server"`
	Token   string `toml:"token" json:"token,omitempty"`
	Comment string `toml:"comment,omitempty" json:"comment,omitempty"`
}

func (e GotifyEndpoint) EndpointName() string { return e.Name }
func (e GotifyEndpoint) Kind() Kind           { return GotifyKind }

func (e GotifyEndpoint) Redacted() Endpoint {
	e.Token = ""
	return e
}

func (e GotifyEndpoint) Validate() error {
	if err := validateName(e.Name); err != nil {
		return err
	}
	if e.Server == "" {
		return validationErrorf("gotify endpoint %q: must specify 'server'", e.Name)
	}
	u, err := url.Parse(e.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validationErrorf("gotify endpoint %q: invalid server URL %q", e.Name, e.Server)
	}
	if e.Token == "" {
		return validationErrorf("gotify endpoint %q: must specify 'token'", e.Name)
	}
	return nil
}

// SMTPMode is the connection security of an SMTP endpoint.
type SMTPMode string

const (
	SMTPInsecure SMTPMode = "insecure"
	SMTPStartTLS SMTPMode = "starttls"
	SMTPTLS      SMTPMode = "tls"
)

type SMTPEndpoint struct {
	Name string `toml:"name" json:"name"`
	// Server is the host name of the relay.
	Server string `toml:"server" json:"server"`
	// Port of the relay, zero uses the default port of the mode.
	Port int `toml:"port,omitzero" json:"port,omitempty"`
	// Mode defaults to tls.
	Mode        SMTPMode `toml:"mode,omitempty" json:"mode,omitempty"`
	Username    string   `toml:"username,omitempty" json:"username,omitempty"`
	Password    string   `toml:"password,omitempty" json:"password,omitempty"`
	Mailto      []string `toml:"mailto,omitempty" json:"mailto,omitempty"`
	MailtoUser  []string `toml:"mailto-user,omitempty" json:"mailto-user,omitempty"`
	FromAddress string   `toml:"from-address" json:"from-address"`
	Author      string   `toml:"author,omitempty" json:"author,omitempty"`
	Comment     string   `toml:"comment,omitempty" json:"comment,omitempty"`
}

func (e SMTPEndpoint) EndpointName() string { return e.Name }
func (e SMTPEndpoint) Kind() Kind           { return SMTPKind }

func (e SMTPEndpoint) Redacted() Endpoint {
	e.Password = ""
	return e
}

// EffectiveMode returns the configured mode or tls.
func (e SMTPEndpoint) EffectiveMode() SMTPMode {
	if e.Mode == "" {
		return SMTPTLS
	}
	return e.Mode
}

// EffectivePort returns the configured port or the default port of the mode.
func (e SMTPEndpoint) EffectivePort() int {
	if e.Port != 0 {
		return e.Port
	}
	switch e.EffectiveMode() {
	case SMTPInsecure:
		return 25
	case SMTPStartTLS:
		return 587
	default:
		return 465
	}
}

func (e SMTPEndpoint) Validate() error {
	if err := validateName(e.Name); err != nil {
		return err
	}
	if e.Server == "" {
		return validationErrorf("smtp endpoint %q: must specify 'server'", e.Name)
	}
	if e.Port < 0 || e.Port > 65535 {
		return validationErrorf("smtp endpoint %q: invalid port %d", e.Name, e.Port)
	}
	switch e.Mode {
	case "", SMTPInsecure, SMTPStartTLS, SMTPTLS:
	default:
		return validationErrorf("smtp endpoint %q: unknown mode %q, must be one of insecure, starttls, tls", e.Name, e.Mode)
	}
	if e.FromAddress == "" {
		return validationErrorf("smtp endpoint %q: must specify 'from-address'", e.Name)
	}
	if err := validateAddresses(e.FromAddress); err != nil {
		return errors.Wrapf(err, "smtp endpoint %q", e.Name)
	}
	if len(e.Mailto) == 0 && len(e.MailtoUser) == 0 {
		return validationErrorf("smtp endpoint %q: must specify 'mailto' or 'mailto-user'", e.Name)
	}
	if err := validateAddresses(e.Mailto...); err != nil {
		return errors.Wrapf(err, "smtp endpoint %q", e.Name)
	}
	if err := validateUsers(e.MailtoUser...); err != nil {
		return errors.Wrapf(err, "smtp endpoint %q", e.Name)
	}
	if e.Password != "" && e.Username == "" {
		return validationErrorf("smtp endpoint %q: 'password' requires 'username'", e.Name)
	}
	return nil
}

func validateAddresses(addrs ...string) error {
	for _, a := range addrs {
		at := strings.IndexByte(a, '@')
		if at <= 0 || at == len(a)-1 || strings.ContainsAny(a, " \t\r\n") {
			return validationErrorf("invalid mail address %q", a)
		}
	}
	return nil
}

// validateUsers checks user ids of the form user@realm.
func validateUsers(users ...string) error {
	for _, u := range users {
		at := strings.IndexByte(u, '@')
		if at <= 0 || at == len(u)-1 {
			return validationErrorf("invalid user %q, expected user@realm", u)
		}
	}
	return nil
}
