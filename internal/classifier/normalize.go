package classifier

import (
	"net"
	"net/url"
	"path"
	"slices"
	"strings"
)

// NormalizeURL returns a canonical form of u used to memoize verdicts, so
// that trivially different spellings of one link share a cache entry:
//   - scheme and host are lower-cased, default ports dropped
//   - the path is cleaned, an empty path becomes "/"
//   - query parameters are sorted by key and value
//   - userinfo and fragment are removed
//
// u is not modified.
func NormalizeURL(u *url.URL) string {
	n := *u
	n.User = nil
	n.Fragment = ""
	n.RawFragment = ""
	n.Scheme = strings.ToLower(n.Scheme)

	host := strings.ToLower(n.Hostname())
	port := n.Port()
	if (n.Scheme == "http" && port == "80") || (n.Scheme == "https" && port == "443") {
		port = ""
	}
	switch {
	case port != "":
		n.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		n.Host = "[" + host + "]"
	default:
		n.Host = host
	}

	cleaned := path.Clean("/" + n.Path)
	if cleaned != "/" {
		cleaned = strings.TrimRight(cleaned, "/")
	}
	n.Path = cleaned
	n.RawPath = ""

	if n.RawQuery != "" {
		q := n.Query()
		for k := range q {
			slices.Sort(q[k])
		}
		n.RawQuery = q.Encode()
	}
	n.ForceQuery = false

	return n.String()
}
