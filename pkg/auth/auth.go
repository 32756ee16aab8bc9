// Package auth checks the static shared-secret credentials sent to the
// JSON-RPC endpoint.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Supported drivers.
const (
	DriverToken = "token"
	DriverNone  = "none"
)

// AuthorizationHeader carries the bearer token.
const AuthorizationHeader = "Authorization"

const bearerPrefix = "Bearer "

// Failures returned by Authenticator.Check. ErrUnauthorized is the caller's
// fault; the other two are server misconfiguration.
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNoTokens      = errors.New("no authentication tokens configured")
	ErrInvalidDriver = errors.New("invalid authentication driver")
)

// Client-facing messages.
const (
	MsgMissingHeader = "Missing or invalid Authorization header"
	MsgInvalidToken  = "Invalid authentication token"
	MsgNoTokens      = "No authentication tokens configured"
	MsgInvalidDriver = "Invalid authentication driver configured"
)

// Config selects the driver and the accepted tokens, keyed by a label
// (e.g. "frontend-dev", "qa"). Empty tokens are ignored.
type Config struct {
	Driver string            `json:"driver" yaml:"driver"`
	Tokens map[string]string `json:"tokens,omitempty" yaml:"tokens,omitempty"`
}

// Error is a failed check. Err is one of the package sentinels and Message
// is safe to return to the client.
type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Authenticator validates requests according to Config.
type Authenticator struct {
	driver string
	tokens []credential
}

type credential struct {
	name  string
	value []byte
}

// New builds an Authenticator. Driver names are matched case-insensitively;
// an empty driver means DriverToken. Unknown drivers are accepted here and
// rejected per request so a bad deployment answers with a clear error.
func New(cfg Config) *Authenticator {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverToken
	}

	names := make([]string, 0, len(cfg.Tokens))
	for name, tok := range cfg.Tokens {
		if tok != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	a := &Authenticator{driver: driver}
	for _, name := range names {
		a.tokens = append(a.tokens, credential{name: name, value: []byte(cfg.Tokens[name])})
	}
	return a
}

// Driver returns the normalized driver name.
func (a *Authenticator) Driver() string { return a.driver }

// TokenCount returns how many non-empty tokens are configured.
func (a *Authenticator) TokenCount() int { return len(a.tokens) }

// Check authenticates r. On success it returns the label of the matching
// token ("" for DriverNone).
func (a *Authenticator) Check(r *http.Request) (string, error) {
	switch a.driver {
	case DriverNone:
		return "", nil
	case DriverToken:
		return a.checkToken(r.Header.Get(AuthorizationHeader))
	default:
		return "", &Error{Err: ErrInvalidDriver, Message: MsgInvalidDriver}
	}
}

func (a *Authenticator) checkToken(header string) (string, error) {
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return "", &Error{Err: ErrUnauthorized, Message: MsgMissingHeader}
	}
	if len(a.tokens) == 0 {
		return "", &Error{Err: ErrNoTokens, Message: MsgNoTokens}
	}

	provided := []byte(header[len(bearerPrefix):])
	matched := ""
	for _, c := range a.tokens {
		// Compare against every token so timing does not reveal which matched.
		if subtle.ConstantTimeCompare(provided, c.value) == 1 && matched == "" {
			matched = c.name
		}
	}
	if matched == "" {
		return "", &Error{Err: ErrUnauthorized, Message: MsgInvalidToken}
	}
	return matched, nil
}

// Message returns the client-facing message for a Check failure.
func Message(err error) string {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
