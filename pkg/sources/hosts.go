package sources

import (
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"

	"github.com/miekg/dns"
)

// CheckHosts warns about URL sources whose host is neither an IP address nor
// a valid host name. Such sources are still fetched; the offending
// identifiers are returned.
func CheckHosts(srcs []Source, log *slog.Logger) []string {
	if log == nil {
		log = slog.Default()
	}
	var invalid []string
	for _, src := range srcs {
		if !isRemote(src.ID) {
			continue
		}
		if err := validateHost(src.ID); err != nil {
			log.Warn("suspicious source host", "source", src.ID, "error", err)
			invalid = append(invalid, src.ID)
		}
	}
	return invalid
}

func validateHost(location string) error {
	u, err := url.Parse(location)
	if err != nil {
		return err
	}
	host := u.Hostname()
	if host == "" {
		return errors.New("missing host")
	}
	if ip := net.ParseIP(host); ip != nil {
		return nil
	}

	name := dns.Fqdn(strings.ToLower(host))
	if _, ok := dns.IsDomainName(name); !ok {
		return errors.New("invalid domain name")
	}
	for _, label := range dns.SplitDomainName(name) {
		if !validLabel(label) {
			return errors.New("invalid host label " + label)
		}
	}
	return nil
}

func validLabel(label string) bool {
	if label == "" || len(label) > 63 {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
