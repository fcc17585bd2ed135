package normalization

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters that vary per marketing link but never
// change which product page is being looked at.
var trackingParams = map[string]bool{
	"utm_source":   true,
	"utm_medium":   true,
	"utm_campaign": true,
	"utm_term":     true,
	"utm_content":  true,
	"gclid":        true,
	"fbclid":       true,
	"msclkid":      true,
	"mc_cid":       true,
	"mc_eid":       true,
	"ref":          true,
	"ref_":         true,
	"referrer":     true,
	"affid":        true,
	"aff_id":       true,
	"affiliate":    true,
	"tag":          true,
}

// ParseProductURL canonicalizes a product page URL so that the same page
// reached through different marketing links yields the same string: scheme
// and host are lower-cased, tracking parameters are dropped, the remaining
// query is re-serialized in sorted order and trailing slashes collapse.
// Unparseable input falls back to a trimmed lower-cased raw string.
func ParseProductURL(input string) (normalized string, fellBack bool) {
	raw := strings.TrimSpace(input)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(raw), true
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for param := range q {
		if trackingParams[strings.ToLower(param)] {
			q.Del(param)
		}
	}
	u.RawQuery = q.Encode()

	if u.Path != "/" {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	return u.String(), false
}
