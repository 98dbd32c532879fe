// Package validate grades evidence sources so verification can weigh search
// results by how authoritative the publishing site is.
package validate

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/model"
)

// AuthorityClassifier assigns authority tiers to source URLs
type AuthorityClassifier struct {
	domainMap    map[string]model.AuthorityTier
	suffixes     []domainSuffix // Longest first, so the most specific entry wins
	pathPatterns []compiledPattern
}

type domainSuffix struct {
	domain string
	tier   model.AuthorityTier
}

type compiledPattern struct {
	pattern *regexp.Regexp
	tier    model.AuthorityTier
}

// NewAuthorityClassifier builds a classifier from authority settings.
// Invalid path patterns are skipped and logged.
func NewAuthorityClassifier(cfg *model.AuthorityConfig, logger *zap.Logger) *AuthorityClassifier {
	if cfg == nil {
		cfg = &model.DefaultConfig().Authority
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier, len(cfg.DomainMap)),
	}

	for host, tier := range cfg.DomainMap {
		a.domainMap[strings.ToLower(host)] = ParseTier(tier)
	}
	for _, d := range cfg.PrimaryDomains {
		a.suffixes = append(a.suffixes, domainSuffix{domain: strings.ToLower(d), tier: model.TierPrimary})
	}
	for _, d := range cfg.SecondaryDomains {
		a.suffixes = append(a.suffixes, domainSuffix{domain: strings.ToLower(d), tier: model.TierSecondary})
	}
	sort.SliceStable(a.suffixes, func(i, j int) bool {
		return len(a.suffixes[i].domain) > len(a.suffixes[j].domain)
	})

	for _, p := range cfg.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			logger.Warn("skipping invalid authority path pattern",
				zap.String("pattern", p.Pattern), zap.Error(err))
			continue
		}
		a.pathPatterns = append(a.pathPatterns, compiledPattern{pattern: re, tier: ParseTier(p.Tier)})
	}

	return a
}

// Classify returns the authority tier of a source URL.
// Unparsable or hostless URLs are tertiary.
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := strings.ToLower(parsed.Hostname())

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}

	for _, s := range a.suffixes {
		if host == s.domain || strings.HasSuffix(host, "."+s.domain) {
			return s.tier
		}
	}

	for _, cp := range a.pathPatterns {
		if cp.pattern.MatchString(parsed.Path) {
			return cp.tier
		}
	}

	// Government and academic TLDs
	for _, suffix := range []string{".gov", ".edu", ".mil", ".ac.uk", ".gov.au", ".gc.ca"} {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}

	return model.TierTertiary
}

// Annotate sets the authority tier on each hit in place and returns the tier counts
func (a *AuthorityClassifier) Annotate(hits []model.SearchHit) map[model.AuthorityTier]int {
	counts := make(map[model.AuthorityTier]int)
	for i := range hits {
		hits[i].Authority = a.Classify(hits[i].Link)
		counts[hits[i].Authority]++
	}
	return counts
}

// ParseTier converts a tier name or number to an AuthorityTier; unknown values are tertiary
func ParseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
