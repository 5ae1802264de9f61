package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tocFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
  xmlns:dc="http://purl.org/dc/elements/1.1/"
  xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/">
  <channel>
    <title>Journal of Occupational Health</title>
    <link>https://example.org/joh</link>
    <description>Latest articles</description>
    <item>
      <title>Workplace stress survey of nurses</title>
      <link>https://example.org/article/1</link>
      <dc:creator>Taro Yamada</dc:creator>
      <dc:creator>Hanako Sato</dc:creator>
      <prism:volume>61</prism:volume>
      <prism:number>3</prism:number>
      <prism:publicationDate>2024-05-01</prism:publicationDate>
    </item>
    <item>
      <title>Shift work and metabolic health outcomes</title>
      <link>https://example.org/article/2</link>
      <dc:creator>Ichiro Suzuki, Jiro Takahashi, Saburo Tanaka, Shiro Ito, Goro Watanabe</dc:creator>
    </item>
    <item>
      <title>Note</title>
      <link>https://example.org/article/3</link>
    </item>
    <item>
      <title>Respiratory protection in construction</title>
      <link>https://example.org/article/4</link>
    </item>
    <item>
      <title>Beyond the cap</title>
      <link>https://example.org/article/5</link>
    </item>
  </channel>
</rss>`

// TestFeed verifies records and issue label from an RSS table of contents
func TestFeed(t *testing.T) {
	res, err := Default().Feed([]byte(tocFeed))

	require.NoError(t, err)
	assert.Equal(t, StrategyFeed, res.Strategy)
	assert.Equal(t, "2024年 61巻3号", res.Issue)
	require.Len(t, res.Articles, 3)

	assert.Equal(t, "Workplace stress survey of nurses", res.Articles[0].Title)
	assert.Equal(t, "Taro Yamada, Hanako Sato", res.Articles[0].Authors)
	assert.Equal(t, "https://example.org/article/1", res.Articles[0].Link)

	assert.Equal(t, "Ichiro Suzuki 他", res.Articles[1].Authors)
	assert.Equal(t, "Respiratory protection in construction", res.Articles[2].Title)
}

// TestFeed_Invalid verifies non-feed bodies are reported
func TestFeed_Invalid(t *testing.T) {
	_, err := Default().Feed([]byte(strings.Repeat("not a feed ", 3)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse feed")
}
