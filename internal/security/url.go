// Package security provides validators for untrusted values before they
// reach the UI.
//
// The link validator guards citation URIs: backends and snippet HTML are
// not trusted, so only plain absolute http(s) URLs may become clickable
// links. Everything else (javascript:, data:, file:, protocol-relative
// tricks, embedded credentials) is rejected.
package security

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsafeLink indicates a URL that must not be rendered as a link.
var ErrUnsafeLink = errors.New("unsafe link")

// allowedLinkSchemes are the schemes a citation link may use.
var allowedLinkSchemes = map[string]struct{}{
	"http":  {},
	"https": {},
}

// ValidateLink checks that rawURL is safe to render as a hyperlink.
func ValidateLink(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeLink, err)
	}

	if _, ok := allowedLinkSchemes[strings.ToLower(u.Scheme)]; !ok {
		return fmt.Errorf("%w: scheme %q", ErrUnsafeLink, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: missing host", ErrUnsafeLink)
	}
	if u.User != nil {
		// user:pass@host URLs are a phishing vector
		return fmt.Errorf("%w: embedded credentials", ErrUnsafeLink)
	}

	return nil
}
