package model

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Laws, statutes, academic papers, official documents
	TierSecondary AuthorityTier = 2 // Encyclopedias, major publishers, reputable media
	TierTertiary  AuthorityTier = 3 // Blogs, personal websites, tourism sites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// SearchHit is one ranked result returned by the web search backend
type SearchHit struct {
	Position  int           `json:"position"`
	Title     string        `json:"title"`
	Link      string        `json:"link"`
	Snippet   string        `json:"snippet"`
	Date      string        `json:"date,omitempty"`
	Authority AuthorityTier `json:"authority"`
}
