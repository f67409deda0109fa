package security

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"signup_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// ErrOffSite is returned for URLs outside the target site
var ErrOffSite = errors.New("navigation outside the target site")

type SecurityLayer struct {
	logger       *logrus.Logger
	allowedHosts []string
}

// NewSecurityLayer - allows the host of targetURL, its subdomains and any extra hosts
func NewSecurityLayer(logger *logrus.Logger, targetURL string, extraHosts ...string) (*SecurityLayer, error) {
	u, err := url.Parse(targetURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("invalid target url %q", targetURL)
	}

	hosts := []string{strings.ToLower(u.Hostname())}
	for _, h := range extraHosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			hosts = append(hosts, h)
		}
	}

	return &SecurityLayer{
		logger:       logger,
		allowedHosts: hosts,
	}, nil
}

func (s *SecurityLayer) CheckNavigation(rawURL string) error {
	if rawURL == "about:blank" {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q is not allowed", ErrOffSite, u.Scheme)
	}

	host := strings.ToLower(u.Hostname())
	for _, allowed := range s.allowedHosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return nil
		}
	}

	s.logger.WithFields(logrus.Fields{
		"component": "security",
		"url":       rawURL,
	}).Warn("navigation refused")
	return fmt.Errorf("%w: host %q is not one of %s", ErrOffSite, host, strings.Join(s.allowedHosts, ", "))
}

// Ensure SecurityLayer implements NavigationGuard interface
var _ interfaces.NavigationGuard = (*SecurityLayer)(nil)
