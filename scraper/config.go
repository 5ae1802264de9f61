package scraper

// ExtractConfig defines how to pull structured article records out of a
// journal listing page whose markup is not known in advance. Selector lists
// are evaluated in order; the first one that matches wins.
type ExtractConfig struct {
	// IssueSelectors locate a region holding the volume/issue label.
	IssueSelectors []string `json:"issue_selectors" yaml:"issue_selectors"`
	// IssuePattern is matched against text nodes when no IssueSelectors
	// entry yields text.
	IssuePattern string `json:"issue_pattern" yaml:"issue_pattern"`

	// ItemSelectors locate one container per article, most specific first.
	ItemSelectors []string `json:"item_selectors" yaml:"item_selectors"`
	// TitleSelectors pick the title anchor inside an item. They are matched
	// as one group, so the earliest matching anchor in the item wins.
	TitleSelectors []string `json:"title_selectors" yaml:"title_selectors"`
	// AuthorSelectors pick the author element inside an item, as a group.
	AuthorSelectors []string `json:"author_selectors" yaml:"author_selectors"`
	// FallbackAuthorSelector is searched for inside the nearest
	// FallbackContainers ancestor of a fallback anchor.
	FallbackAuthorSelector string   `json:"fallback_author_selector" yaml:"fallback_author_selector"`
	FallbackContainers     []string `json:"fallback_containers" yaml:"fallback_containers"`
	// ArticlePathPattern is a regular expression matched against hrefs
	// during whole-document fallback.
	ArticlePathPattern string `json:"article_path_pattern" yaml:"article_path_pattern"`

	MaxArticles            int `json:"max_articles" yaml:"max_articles"`
	MaxTitleLength         int `json:"max_title_length" yaml:"max_title_length"`
	MinTitleLength         int `json:"min_title_length" yaml:"min_title_length"`
	MinFallbackTitleLength int `json:"min_fallback_title_length" yaml:"min_fallback_title_length"`
	MaxAuthorLength        int `json:"max_author_length" yaml:"max_author_length"`
	FallbackAuthorLength   int `json:"fallback_author_length" yaml:"fallback_author_length"`
	// MinAPITitleLength applies to titles read from the J-STAGE search API.
	MinAPITitleLength int `json:"min_api_title_length" yaml:"min_api_title_length"`

	// AuthorDelimiters split an over-long author list. EtAlSuffix is appended
	// to the first author when the list had to be shortened.
	AuthorDelimiters []string `json:"author_delimiters" yaml:"author_delimiters"`
	EtAlSuffix       string   `json:"et_al_suffix" yaml:"et_al_suffix"`
}

// Default lengths. All lengths are counted in runes.
const (
	DefaultMaxArticles            = 3
	DefaultMaxTitleLength         = 100
	DefaultMinTitleLength         = 5
	DefaultMinFallbackTitleLength = 10
	DefaultMaxAuthorLength        = 40
	DefaultFallbackAuthorLength   = 50
	DefaultMinAPITitleLength      = 4
	DefaultEtAlSuffix             = " 他"
	DefaultIssuePattern           = `\d{4}\s*年?\s*\d+\s*巻\s*\d+\s*号`
	DefaultArticlePathPattern     = `/article/`
)

// DefaultExtractConfig returns the selector chains and limits tuned for
// J-STAGE browse pages and similar publisher listings.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{
		IssueSelectors: []string{
			".search-resultslabel",
			".issue-header",
			"h2.issue-title",
		},
		IssuePattern: DefaultIssuePattern,
		ItemSelectors: []string{
			".search-list-article",
			".article-list-item",
			".c-toc__entry",
			`div[class*="article"]`,
			".resultlist li",
			"li.article",
		},
		TitleSelectors: []string{
			"a.title",
			".article-title a",
			`a[href*="/article/"]`,
		},
		AuthorSelectors: []string{
			".article-author",
			".author",
			`[class*="author"]`,
		},
		FallbackAuthorSelector: `[class*="author"]`,
		FallbackContainers:     []string{"div", "li", "article"},
		ArticlePathPattern:     DefaultArticlePathPattern,

		MaxArticles:            DefaultMaxArticles,
		MaxTitleLength:         DefaultMaxTitleLength,
		MinTitleLength:         DefaultMinTitleLength,
		MinFallbackTitleLength: DefaultMinFallbackTitleLength,
		MaxAuthorLength:        DefaultMaxAuthorLength,
		FallbackAuthorLength:   DefaultFallbackAuthorLength,
		MinAPITitleLength:      DefaultMinAPITitleLength,

		AuthorDelimiters: []string{",", "、", "，"},
		EtAlSuffix:       DefaultEtAlSuffix,
	}
}

// Merge returns a copy of c with every non-zero field of override applied
// on top. Slices replace rather than append.
func (c ExtractConfig) Merge(override ExtractConfig) ExtractConfig {
	out := c

	if len(override.IssueSelectors) > 0 {
		out.IssueSelectors = override.IssueSelectors
	}
	if override.IssuePattern != "" {
		out.IssuePattern = override.IssuePattern
	}
	if len(override.ItemSelectors) > 0 {
		out.ItemSelectors = override.ItemSelectors
	}
	if len(override.TitleSelectors) > 0 {
		out.TitleSelectors = override.TitleSelectors
	}
	if len(override.AuthorSelectors) > 0 {
		out.AuthorSelectors = override.AuthorSelectors
	}
	if override.FallbackAuthorSelector != "" {
		out.FallbackAuthorSelector = override.FallbackAuthorSelector
	}
	if len(override.FallbackContainers) > 0 {
		out.FallbackContainers = override.FallbackContainers
	}
	if override.ArticlePathPattern != "" {
		out.ArticlePathPattern = override.ArticlePathPattern
	}
	if override.MaxArticles > 0 {
		out.MaxArticles = override.MaxArticles
	}
	if override.MaxTitleLength > 0 {
		out.MaxTitleLength = override.MaxTitleLength
	}
	if override.MinTitleLength > 0 {
		out.MinTitleLength = override.MinTitleLength
	}
	if override.MinFallbackTitleLength > 0 {
		out.MinFallbackTitleLength = override.MinFallbackTitleLength
	}
	if override.MaxAuthorLength > 0 {
		out.MaxAuthorLength = override.MaxAuthorLength
	}
	if override.FallbackAuthorLength > 0 {
		out.FallbackAuthorLength = override.FallbackAuthorLength
	}
	if override.MinAPITitleLength > 0 {
		out.MinAPITitleLength = override.MinAPITitleLength
	}
	if len(override.AuthorDelimiters) > 0 {
		out.AuthorDelimiters = override.AuthorDelimiters
	}
	if override.EtAlSuffix != "" {
		out.EtAlSuffix = override.EtAlSuffix
	}

	return out
}
