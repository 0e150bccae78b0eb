package engine

import (
	"sort"

	"trend-systemv1/internal/model"
)

// IndustryRank summarizes one industry group's scored reports.
type IndustryRank struct {
	Industry string   `json:"industry"`
	AvgScore float64  `json:"avg_score"`
	Count    int      `json:"count"`
	Symbols  []string `json:"symbols"`
}

// GroupByIndustry buckets reports by their industry tag. Untagged reports
// land under "". The tag is downstream grouping only — it never feeds back
// into scoring.
func GroupByIndustry(reports []model.Report) map[string][]model.Report {
	groups := make(map[string][]model.Report)
	for _, r := range reports {
		groups[r.Industry] = append(groups[r.Industry], r)
	}
	return groups
}

// RankIndustries orders industry groups by average composite score,
// strongest first. Reports without an available score are excluded from the
// average; groups with no scored report are dropped. Ties break on the
// industry name for determinism.
func RankIndustries(reports []model.Report) []IndustryRank {
	ranks := make([]IndustryRank, 0)
	for industry, group := range GroupByIndustry(reports) {
		sum, n := 0, 0
		symbols := make([]string, 0, len(group))
		for _, r := range group {
			if !r.Score.Valid {
				continue
			}
			sum += r.Score.Value
			n++
			symbols = append(symbols, r.Symbol)
		}
		if n == 0 {
			continue
		}
		sort.Strings(symbols)
		ranks = append(ranks, IndustryRank{
			Industry: industry,
			AvgScore: float64(sum) / float64(n),
			Count:    n,
			Symbols:  symbols,
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].AvgScore != ranks[j].AvgScore {
			return ranks[i].AvgScore > ranks[j].AvgScore
		}
		return ranks[i].Industry < ranks[j].Industry
	})
	return ranks
}
