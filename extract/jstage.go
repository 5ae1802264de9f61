package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sanpo/journalfed/journal"
)

// J-STAGE search API (service=3) response. Element names are matched by
// local name so the Atom and prism namespaces need no declaration here.
type jstageFeed struct {
	XMLName xml.Name      `xml:"feed"`
	Entries []jstageEntry `xml:"entry"`
}

type jstageEntry struct {
	Title        string         `xml:"title"`
	ArticleTitle jstageLangText `xml:"article_title"`
	Authors      []jstageAuthor `xml:"author"`
	Links        []jstageLink   `xml:"link"`
	Volume       string         `xml:"volume"`
	Number       string         `xml:"number"`
	PubYear      string         `xml:"pubyear"`
}

type jstageLangText struct {
	Ja   string `xml:"ja"`
	En   string `xml:"en"`
	Text string `xml:",chardata"`
}

type jstageAuthor struct {
	Ja   jstageNames `xml:"ja"`
	En   jstageNames `xml:"en"`
	Name []string    `xml:"name"`
}

// Some responses carry <n> instead of <name>.
type jstageNames struct {
	Name  []string `xml:"name"`
	Short []string `xml:"n"`
}

type jstageLink struct {
	Href string `xml:"href,attr"`
}

// JStageAPI extracts records from a J-STAGE search API response. The issue
// label is built from the volume, number and publication year of the first
// entry.
func (e *Extractor) JStageAPI(body []byte) (Result, error) {
	var feed jstageFeed
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&feed); err != nil {
		return Result{}, fmt.Errorf("failed to parse J-STAGE response: %w", err)
	}

	res := Result{
		Articles: []journal.ArticleRecord{},
		Strategy: StrategyJStageAPI,
	}
	if len(feed.Entries) > 0 {
		res.Issue = jstageIssue(feed.Entries[0])
	}

	for _, entry := range feed.Entries {
		if max := e.cfg.MaxArticles; max > 0 && len(res.Articles) >= max {
			break
		}

		title := entry.title()
		if title == "" || utf8.RuneCountInString(title) < e.cfg.MinAPITitleLength {
			continue
		}

		var link string
		if len(entry.Links) > 0 {
			link = ResolveLink(entry.Links[0].Href, "")
		}

		res.Articles = append(res.Articles, journal.ArticleRecord{
			Title:   truncateRunes(title, e.cfg.MaxTitleLength),
			Authors: e.joinNames(entry.names()),
			Link:    link,
		})
	}

	return res, nil
}

func (en jstageEntry) title() string {
	for _, t := range []string{en.ArticleTitle.Ja, en.ArticleTitle.En, en.ArticleTitle.Text} {
		if t = normalizeSpace(t); t != "" {
			return t
		}
	}
	if t := normalizeSpace(en.Title); !strings.HasPrefix(t, "http") {
		return t
	}
	return ""
}

// names prefers the Japanese author names and falls back to English.
func (en jstageEntry) names() []string {
	var ja, other []string
	for _, a := range en.Authors {
		ja = append(ja, a.Ja.all()...)
		other = append(other, a.En.all()...)
		other = append(other, cleanNames(a.Name)...)
	}
	if len(ja) > 0 {
		return ja
	}
	return other
}

func (n jstageNames) all() []string {
	return append(cleanNames(n.Name), cleanNames(n.Short)...)
}

func cleanNames(names []string) []string {
	var out []string
	for _, name := range names {
		if name = normalizeSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// joinNames lists up to two names; longer lists become the first name plus
// the et-al suffix.
func (e *Extractor) joinNames(names []string) string {
	if len(names) > 2 {
		return names[0] + e.cfg.EtAlSuffix
	}
	return strings.Join(names, ", ")
}

func jstageIssue(en jstageEntry) string {
	return issueLabel(en.PubYear, en.Volume, en.Number)
}

// issueLabel formats "2024年 61巻3号". Without a volume there is no label.
func issueLabel(year, vol, no string) string {
	vol = strings.TrimSpace(vol)
	if vol == "" {
		return ""
	}

	var b strings.Builder
	if year = strings.TrimSpace(year); year != "" {
		b.WriteString(year + "年 ")
	}
	b.WriteString(vol + "巻")
	if no = strings.TrimSpace(no); no != "" {
		b.WriteString(no + "号")
	}
	return b.String()
}
