package extract

import (
	"net/url"
	"strings"
)

// CanonicalURL strips tracking query parameters and fragments from a
// listing link, producing the stable identifier used for deduplication.
// Relative links are resolved against base when one is given.
func CanonicalURL(raw string, base *url.URL) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
