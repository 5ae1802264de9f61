package journal

import "net/url"

const jstageAPIBase = "https://api.jstage.jst.go.jp/searchapi/do"

// JStageAPIURL returns the J-STAGE search API query listing the newest
// articles of the journal with code cdjournal.
func JStageAPIURL(cdjournal string) string {
	q := url.Values{}
	q.Set("service", "3")
	q.Set("cdjournal", cdjournal)
	q.Set("count", "5")
	return jstageAPIBase + "?" + q.Encode()
}

func jstageBrowseURL(cdjournal string) string {
	return "https://www.jstage.jst.go.jp/browse/" + cdjournal + "/-char/ja"
}

// DefaultSources returns the occupational health journals tracked when no
// configuration file or source database is provided.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			ID:          "sangyoeisei",
			Name:        "産業衛生学雑誌",
			Publisher:   "日本産業衛生学会",
			Color:       "#0066cc",
			URL:         jstageBrowseURL("sangyoeisei"),
			Description: "日本産業衛生学会の機関誌。原著論文、総説、事例報告などを掲載。",
		},
		{
			ID:          "indhealth",
			Name:        "Industrial Health",
			Publisher:   "労働安全衛生総合研究所",
			Color:       "#006644",
			URL:         jstageBrowseURL("indhealth"),
			Description: "国際的査読付き英文誌。産業医学、人間工学、産業衛生など幅広い分野をカバー。",
		},
		{
			ID:          "ohpfrev",
			Name:        "産業医学レビュー",
			Publisher:   "産業医学振興財団",
			Color:       "#cc3300",
			URL:         jstageBrowseURL("ohpfrev"),
			Description: "産業医学領域の重要テーマについて専門家による総説論文を掲載。",
		},
		{
			ID:          "jjomh",
			Name:        "産業精神保健",
			Publisher:   "日本産業精神保健学会",
			Color:       "#9933cc",
			URL:         jstageBrowseURL("jjomh"),
			Description: "職場のメンタルヘルスに特化した専門誌。",
		},
		{
			ID:          "jaohn",
			Name:        "日本産業看護学会誌",
			Publisher:   "日本産業看護学会",
			Color:       "#e91e63",
			URL:         jstageBrowseURL("jaohn"),
			Description: "産業看護の実践、教育、両立支援における看護職の役割などを掲載。",
		},
		{
			ID:          "jaohl",
			Name:        "産業保健法学会誌",
			Publisher:   "日本産業保健法学会",
			Color:       "#336699",
			URL:         jstageBrowseURL("jaohl"),
			Description: "産業保健法学に関する専門誌。法の知見を基礎に現場課題の解決を探求。",
		},
	}
}
