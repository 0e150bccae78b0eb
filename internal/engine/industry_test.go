package engine

import (
	"testing"

	"trend-systemv1/internal/model"
)

func scored(symbol, industry string, score int) model.Report {
	return model.Report{
		Symbol:   symbol,
		Industry: industry,
		Score:    model.Score{Value: score, Valid: true},
	}
}

func TestGroupByIndustry(t *testing.T) {
	reports := []model.Report{
		scored("000001", "bank", 80),
		scored("600000", "bank", 60),
		scored("300750", "battery", 90),
		scored("999999", "", 50),
	}
	groups := GroupByIndustry(reports)
	if len(groups) != 3 {
		t.Fatalf("groups=%d, want 3", len(groups))
	}
	if len(groups["bank"]) != 2 || len(groups["battery"]) != 1 || len(groups[""]) != 1 {
		t.Errorf("unexpected grouping: %+v", groups)
	}
}

func TestRankIndustries(t *testing.T) {
	reports := []model.Report{
		scored("000001", "bank", 80),
		scored("600000", "bank", 60),
		scored("300750", "battery", 90),
		{Symbol: "688111", Industry: "software"}, // score unavailable
	}

	ranks := RankIndustries(reports)
	if len(ranks) != 2 {
		t.Fatalf("ranks=%d, want 2 (unavailable-only group dropped): %+v", len(ranks), ranks)
	}
	if ranks[0].Industry != "battery" || ranks[0].AvgScore != 90 {
		t.Errorf("top rank %+v, want battery at 90", ranks[0])
	}
	if ranks[1].Industry != "bank" || ranks[1].AvgScore != 70 || ranks[1].Count != 2 {
		t.Errorf("second rank %+v, want bank at 70 over 2 symbols", ranks[1])
	}
	if len(ranks[1].Symbols) != 2 || ranks[1].Symbols[0] != "000001" {
		t.Errorf("symbols not sorted: %+v", ranks[1].Symbols)
	}
}
