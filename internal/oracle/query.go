package oracle

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildQuery wraps text in double quotes to request an exact-phrase match
func BuildQuery(prefix, text string) string {
	return prefix + `"` + strings.TrimSpace(text) + `"`
}

// BuildSearchURL places the quoted, URL-encoded phrase in the provider's query parameter
func BuildSearchURL(endpoint, param, prefix, text string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q is not an absolute URL", endpoint)
	}
	if param == "" {
		param = "q"
	}

	q := u.Query()
	q.Set(param, BuildQuery(prefix, text))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
