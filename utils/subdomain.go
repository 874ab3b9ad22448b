package utils

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

var subdomainLabelRe = regexp.MustCompile(`^[a-z0-9-]+$`)

// ExtractSubdomain pulls the tenant label out of a request hostname.
// The hostname may carry a port, which is stripped first. The label must
// sit directly under baseDomain and consist of lowercase alphanumerics
// and hyphens. A bare IP, the base domain itself, or a host outside the
// base domain all fail with ErrInvalidHost.
func ExtractSubdomain(host, baseDomain string) (string, error) {
	host = strings.TrimSpace(host)
	if strings.Contains(host, ":") {
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	host = strings.ToLower(host)
	baseDomain = strings.ToLower(baseDomain)

	if host == "" {
		return "", fmt.Errorf("%w: empty hostname", ErrInvalidHost)
	}
	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("%w: bare IP address %q", ErrInvalidHost, host)
	}
	if host == baseDomain {
		return "", fmt.Errorf("%w: no subdomain present", ErrInvalidHost)
	}
	if !strings.HasSuffix(host, "."+baseDomain) {
		return "", fmt.Errorf("%w: %q is not under %q", ErrInvalidHost, host, baseDomain)
	}

	label := strings.TrimSuffix(host, "."+baseDomain)
	if label == "" || !subdomainLabelRe.MatchString(label) {
		return "", fmt.Errorf("%w: illegal subdomain label %q", ErrInvalidHost, label)
	}
	return label, nil
}
