package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDefaultExtractConfig verifies the default limits
func TestDefaultExtractConfig(t *testing.T) {
	cfg := DefaultExtractConfig()

	assert.Equal(t, 3, cfg.MaxArticles)
	assert.Equal(t, 100, cfg.MaxTitleLength)
	assert.Equal(t, 5, cfg.MinTitleLength)
	assert.Equal(t, 10, cfg.MinFallbackTitleLength)
	assert.Equal(t, 40, cfg.MaxAuthorLength)
	assert.Equal(t, 50, cfg.FallbackAuthorLength)
	assert.Equal(t, " 他", cfg.EtAlSuffix)
	assert.Equal(t, ".search-list-article", cfg.ItemSelectors[0], "most specific selector first")
	assert.Equal(t, "li.article", cfg.ItemSelectors[len(cfg.ItemSelectors)-1])
}

// TestMerge_OverridesNonZeroFields verifies partial overrides
func TestMerge_OverridesNonZeroFields(t *testing.T) {
	base := DefaultExtractConfig()

	merged := base.Merge(ExtractConfig{
		MaxArticles:   5,
		ItemSelectors: []string{".entry"},
		EtAlSuffix:    " et al.",
	})

	assert.Equal(t, 5, merged.MaxArticles)
	assert.Equal(t, []string{".entry"}, merged.ItemSelectors)
	assert.Equal(t, " et al.", merged.EtAlSuffix)
	assert.Equal(t, base.MaxTitleLength, merged.MaxTitleLength, "untouched fields keep defaults")
	assert.Equal(t, base.IssueSelectors, merged.IssueSelectors)
}

// TestMerge_DoesNotMutateReceiver verifies value semantics
func TestMerge_DoesNotMutateReceiver(t *testing.T) {
	base := DefaultExtractConfig()

	_ = base.Merge(ExtractConfig{MaxTitleLength: 10})

	assert.Equal(t, DefaultMaxTitleLength, base.MaxTitleLength)
}
