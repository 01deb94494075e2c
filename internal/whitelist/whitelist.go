package whitelist

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a sender's domain is protected. Mail from a
// protected domain is never auto-archived, whatever its category.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new protected-domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	// Normalize domains (lowercase)
	normalizedDomains := make([]string, len(domains))
	for i, domain := range domains {
		normalizedDomains[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalizedDomains) > 0 && logger != nil {
		logger.Info("Initialized protected-domain checker", zap.Strings("domains", normalizedDomains))
	}

	return &Checker{
		domains: normalizedDomains,
		logger:  logger,
	}
}

// IsProtected checks if the sender's domain is in the protected list.
// The sender may be a bare address or a display-name form like
// "Name <user@example.com>".
func (c *Checker) IsProtected(from string) bool {
	if len(c.domains) == 0 {
		return false
	}

	domain := senderDomain(from)
	if domain == "" {
		return false
	}

	for _, protected := range c.domains {
		if protected == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is protected",
					zap.String("domain", domain),
					zap.String("sender", from))
			}
			return true
		}
	}

	return false
}

// senderDomain extracts the lowercase domain from a sender header value
func senderDomain(from string) string {
	addr := from
	if start := strings.LastIndexByte(from, '<'); start >= 0 {
		if end := strings.IndexByte(from[start:], '>'); end > 0 {
			addr = from[start+1 : start+end]
		}
	}

	parts := strings.Split(addr, "@")
	if len(parts) != 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}
