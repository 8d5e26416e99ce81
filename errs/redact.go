package errs

import "strings"

// RedactionToken replaces known secrets in outgoing messages.
const RedactionToken = "[REDACTED]"

// Sanitizer scrubs known secrets from user-facing strings. Adapters construct
// one with their API key at startup and pass every outgoing error message
// through Clean.
type Sanitizer struct {
	secrets []string
}

// NewSanitizer builds a Sanitizer for the given secrets. Empty and
// whitespace-only values are ignored so a missing key cannot turn Clean into
// a no-op replacement of the empty string.
func NewSanitizer(secrets ...string) *Sanitizer {
	s := &Sanitizer{}
	for _, sec := range secrets {
		if strings.TrimSpace(sec) != "" {
			s.secrets = append(s.secrets, sec)
		}
	}
	return s
}

// Clean replaces every occurrence of a known secret with RedactionToken.
func (s *Sanitizer) Clean(msg string) string {
	if s == nil {
		return msg
	}
	for _, sec := range s.secrets {
		msg = strings.ReplaceAll(msg, sec, RedactionToken)
	}
	return msg
}

// CleanErr is a convenience for Clean(err.Error()); it returns "" for nil.
func (s *Sanitizer) CleanErr(err error) string {
	if err == nil {
		return ""
	}
	return s.Clean(err.Error())
}
