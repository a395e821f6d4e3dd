package analysis

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"agricore/pkg/domain"
)

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func testCrop() domain.Crop {
	return domain.Crop{
		Base: domain.Base{
			ID:           "c1",
			Name:         "North Field Wheat",
			AreaHectares: 10,
			PlantedAt:    testNow.AddDate(0, -3, 0),
			Status:       domain.StatusGrowing,
		},
		Type:  domain.CropTypeGrain,
		Stage: domain.StageMature,
	}
}

func testForest() domain.Forest {
	return domain.Forest{
		Base: domain.Base{
			ID:           "f1",
			Name:         "Ridge Pine Stand",
			AreaHectares: 25,
			PlantedAt:    testNow.AddDate(-15, 0, 0),
			Status:       domain.StatusGrowing,
		},
		Species:           "pine",
		StandAgeYears:     15,
		DensityPerHectare: 400,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEstimateCropYieldMature(t *testing.T) {
	policy := DefaultPolicy()
	policy.CropYieldRates[domain.CropTypeGrain] = 2.0

	est, err := EstimateYield(testCrop(), policy)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	// 2 t/ha base rate, 10 ha, mature multiplier 1.0.
	if !almostEqual(est.Quantity, 20) {
		t.Fatalf("expected 20 tonnes, got %v", est.Quantity)
	}
	if est.Unit != UnitTonnes || est.Confidence != ConfidenceEstimated {
		t.Fatalf("unexpected estimate: %+v", est)
	}
}

func TestEstimateCropYieldStageMultipliers(t *testing.T) {
	policy := DefaultPolicy()
	base := testCrop()

	cases := []struct {
		stage domain.GrowthStage
		want  float64
	}{
		{domain.StageSeedling, 3.5 * 10 * 0.1},
		{domain.StageGrowing, 3.5 * 10 * 0.5},
		{domain.StageMature, 3.5 * 10 * 1.0},
	}
	for _, tc := range cases {
		c := base
		c.Stage = tc.stage
		est, err := EstimateYield(c, policy)
		if err != nil {
			t.Fatalf("%s: %v", tc.stage, err)
		}
		if !almostEqual(est.Quantity, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.stage, tc.want, est.Quantity)
		}
	}
}

func TestEstimateHarvestedCropUsesRecordedYield(t *testing.T) {
	c := testCrop()
	c.Stage = domain.StageHarvested
	c.Status = domain.StatusHarvested
	recorded := 15.0
	c.LastYieldTonnes = &recorded

	est, err := EstimateYield(c, DefaultPolicy())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if est.Quantity != 15 {
		t.Fatalf("expected recorded yield 15, got %v", est.Quantity)
	}
	if est.Confidence != ConfidenceRecorded {
		t.Fatalf("expected recorded confidence, got %s", est.Confidence)
	}

	// No recorded yield reports zero rather than an estimate.
	c.LastYieldTonnes = nil
	est, err = EstimateYield(c, DefaultPolicy())
	if err != nil {
		t.Fatalf("estimate without record: %v", err)
	}
	if est.Quantity != 0 {
		t.Fatalf("expected zero, got %v", est.Quantity)
	}
}

func TestEstimateOrganicCropDiscounted(t *testing.T) {
	c := testCrop()
	c.Organic = true
	est, err := EstimateYield(c, DefaultPolicy())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !almostEqual(est.Quantity, 3.5*10*0.8) {
		t.Fatalf("organic factor not applied: %v", est.Quantity)
	}
}

func TestEstimateForestYield(t *testing.T) {
	est, err := EstimateYield(testForest(), DefaultPolicy())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	// pine 15 m3/ha over 25 ha, mature stand.
	if !almostEqual(est.Quantity, 375) {
		t.Fatalf("expected 375 m3, got %v", est.Quantity)
	}
	if est.Unit != UnitCubicMeters {
		t.Fatalf("unexpected unit %s", est.Unit)
	}

	young := testForest()
	young.StandAgeYears = 2
	est, err = EstimateYield(young, DefaultPolicy())
	if err != nil {
		t.Fatalf("estimate young: %v", err)
	}
	if !almostEqual(est.Quantity, 375*0.3) {
		t.Fatalf("young stand discount not applied: %v", est.Quantity)
	}
}

func TestEstimateUnknownSpeciesUsesDefaultRate(t *testing.T) {
	f := testForest()
	f.Species = "baobab"
	est, err := EstimateYield(f, DefaultPolicy())
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	if !almostEqual(est.Quantity, 12*25) {
		t.Fatalf("default timber rate not applied: %v", est.Quantity)
	}
}

func TestEstimateInsufficientData(t *testing.T) {
	noArea := testCrop()
	noArea.AreaHectares = 0
	if _, err := EstimateYield(noArea, DefaultPolicy()); err == nil {
		t.Fatal("expected error for zero area")
	} else {
		var insufficient domain.ErrInsufficientData
		if !errors.As(err, &insufficient) {
			t.Fatalf("expected ErrInsufficientData, got %T", err)
		}
	}

	noSpecies := testForest()
	noSpecies.Species = ""
	if _, err := EstimateYield(noSpecies, DefaultPolicy()); err == nil {
		t.Fatal("expected error for missing species")
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	policy := DefaultPolicy()
	first, err := EstimateYield(testCrop(), policy)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := EstimateYield(testCrop(), policy)
		if err != nil {
			t.Fatalf("estimate: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("estimate not deterministic: %+v vs %+v", first, again)
		}
	}
}

func TestRecommendYoungStandOutranksInventory(t *testing.T) {
	// A two-year-old stand has never been inventoried, but stand age advice
	// takes precedence over the inventory reminder.
	f := testForest()
	f.StandAgeYears = 2
	f.PlantedAt = testNow.AddDate(-2, 0, 0)
	f.LastInventoryAt = nil

	rec, err := Recommend(f, DefaultPolicy(), testNow)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Category != "young-stand" {
		t.Fatalf("expected young-stand, got %s (%s)", rec.Category, rec.Message)
	}
}

func TestRecommendInventoryOverdue(t *testing.T) {
	f := testForest()
	stale := testNow.AddDate(-2, 0, 0)
	f.LastInventoryAt = &stale

	rec, err := Recommend(f, DefaultPolicy(), testNow)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Category != "inventory-overdue" {
		t.Fatalf("expected inventory-overdue, got %s", rec.Category)
	}
}

func TestRecommendHarvestWindow(t *testing.T) {
	c := testCrop()
	harvest := testNow.AddDate(0, 0, 7)
	c.ExpectedHarvestAt = &harvest

	rec, err := Recommend(c, DefaultPolicy(), testNow)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Category != "harvest-window" {
		t.Fatalf("expected harvest-window, got %s", rec.Category)
	}
}

func TestRecommendSeedlingCare(t *testing.T) {
	c := testCrop()
	c.Stage = domain.StageSeedling

	rec, err := Recommend(c, DefaultPolicy(), testNow)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Category != "seedling-care" {
		t.Fatalf("expected seedling-care, got %s", rec.Category)
	}
}

func TestRecommendPostHarvest(t *testing.T) {
	c := testCrop()
	c.Stage = domain.StageHarvested

	rec, err := Recommend(c, DefaultPolicy(), testNow)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Category != "post-harvest" {
		t.Fatalf("expected post-harvest, got %s", rec.Category)
	}
}

func TestRecommendFallsBackToSeasonal(t *testing.T) {
	rec, err := Recommend(testCrop(), DefaultPolicy(), testNow)
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if rec.Category != "seasonal" {
		t.Fatalf("expected seasonal fallback, got %s", rec.Category)
	}
	if rec.Message == "" {
		t.Fatal("expected non-empty seasonal message")
	}
}

func TestAggregateEmptyIsZeroes(t *testing.T) {
	report := Aggregate(nil, DefaultPolicy())
	if report.TotalCount != 0 || report.TotalAreaHectares != 0 || report.TotalEstimatedYield != 0 || report.AverageEstimatedYield != 0 {
		t.Fatalf("expected zero report, got %+v", report)
	}
}

func TestAggregateTotals(t *testing.T) {
	entities := []domain.Entity{testCrop(), testForest()}
	report := Aggregate(entities, DefaultPolicy())

	if report.TotalCount != 2 || report.CropCount != 1 || report.ForestCount != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	if !almostEqual(report.TotalAreaHectares, 35) {
		t.Fatalf("expected 35 ha, got %v", report.TotalAreaHectares)
	}
	if !almostEqual(report.EstimatedCropTonnes, 35) { // 3.5 * 10 * 1.0
		t.Fatalf("expected 35 t, got %v", report.EstimatedCropTonnes)
	}
	if !almostEqual(report.EstimatedTimberCubicMeters, 375) {
		t.Fatalf("expected 375 m3, got %v", report.EstimatedTimberCubicMeters)
	}
	if !almostEqual(report.TotalEstimatedYield, 410) {
		t.Fatalf("expected 410 total, got %v", report.TotalEstimatedYield)
	}
	if !almostEqual(report.AverageEstimatedYield, 205) {
		t.Fatalf("expected 205 average, got %v", report.AverageEstimatedYield)
	}
	if report.CountsByStage[domain.StageMature] != 1 || report.CountsByCropType[domain.CropTypeGrain] != 1 {
		t.Fatalf("breakdowns missing: %+v", report)
	}
}

func TestAggregateSkipsUnestimableYield(t *testing.T) {
	broken := testCrop()
	broken.Type = ""
	report := Aggregate([]domain.Entity{broken}, DefaultPolicy())
	if report.TotalCount != 1 {
		t.Fatalf("entity should still be counted: %+v", report)
	}
	if report.EstimatedCropTonnes != 0 {
		t.Fatalf("unestimable crop contributed yield: %v", report.EstimatedCropTonnes)
	}
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	out := Analyze(nil, DefaultPolicy(), testNow)
	if len(out.Recommendations) != 1 {
		t.Fatalf("expected single starter recommendation, got %v", out.Recommendations)
	}
	if out.RiskLevel != RiskLow {
		t.Fatalf("unexpected risk level %s", out.RiskLevel)
	}
}

func TestAnalyzeSingleHoldingIsMediumRisk(t *testing.T) {
	out := Analyze([]domain.Entity{testCrop()}, DefaultPolicy(), testNow)
	if out.RiskLevel != RiskMedium {
		t.Fatalf("expected medium risk, got %s", out.RiskLevel)
	}
	if !containsSubstring(out.Recommendations, "forestry") {
		t.Fatalf("expected forestry diversification advice, got %v", out.Recommendations)
	}
	if !containsSubstring(out.Recommendations, "Diversify") {
		t.Fatalf("expected diversification advice, got %v", out.Recommendations)
	}
}

func TestAnalyzeDiversifiedPortfolio(t *testing.T) {
	second := testCrop()
	second.ID = "c2"
	second.Type = domain.CropTypeVegetable
	entities := []domain.Entity{testCrop(), second, testForest()}

	out := Analyze(entities, DefaultPolicy(), testNow)
	if out.RiskLevel != RiskLow {
		t.Fatalf("expected low risk, got %s", out.RiskLevel)
	}
	if len(out.Insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(out.Insights))
	}
	// pine sequesters 8 t/ha over 25 ha.
	if !almostEqual(out.CarbonSequestrationTCO2, 200) {
		t.Fatalf("expected 200 tCO2, got %v", out.CarbonSequestrationTCO2)
	}
	if !containsSubstring(out.Recommendations, "sequester") {
		t.Fatalf("expected carbon note, got %v", out.Recommendations)
	}
	if !containsSubstring(out.Recommendations, "diversification") {
		t.Fatalf("expected diversification note, got %v", out.Recommendations)
	}
}

func TestAnalyzeLargeHolding(t *testing.T) {
	big := testCrop()
	big.AreaHectares = 150
	out := Analyze([]domain.Entity{big}, DefaultPolicy(), testNow)
	if !containsSubstring(out.Recommendations, "precision agriculture") {
		t.Fatalf("expected precision agriculture advice, got %v", out.Recommendations)
	}
}

func containsSubstring(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
