package classifier

import "net/url"

// Oracle decides whether a parsed URL is a scam link. Implementations must be
// side-effect free. validateConfig asks the oracle to re-check its rules
// before answering; the classifier always passes false since rules are
// validated once at startup.
//
//go:generate mockgen -package mockclassifier -source=interface.go -destination=mock/mockclassifier.go *
type Oracle interface {
	IsScam(u *url.URL, validateConfig bool) (bool, error)
}
