package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMarketValueCrop(t *testing.T) {
	value, err := MarketValue(testCrop(), DefaultPolicy())
	if err != nil {
		t.Fatalf("market value: %v", err)
	}
	// 35 t at 250/t.
	want := decimal.NewFromInt(8750)
	if !value.Equal(want) {
		t.Fatalf("expected %s, got %s", want, value)
	}
}

func TestMarketValueOrganicPremium(t *testing.T) {
	c := testCrop()
	c.Organic = true
	value, err := MarketValue(c, DefaultPolicy())
	if err != nil {
		t.Fatalf("market value: %v", err)
	}
	// 35 * 0.8 = 28 t at 250/t * 1.3 premium.
	want := decimal.NewFromInt(28).Mul(decimal.NewFromInt(250)).Mul(decimal.NewFromFloat(1.3))
	if !value.Equal(want) {
		t.Fatalf("expected %s, got %s", want, value)
	}
}

func TestMarketValueForest(t *testing.T) {
	value, err := MarketValue(testForest(), DefaultPolicy())
	if err != nil {
		t.Fatalf("market value: %v", err)
	}
	// 375 m3 at 100/m3.
	want := decimal.NewFromInt(37500)
	if !value.Equal(want) {
		t.Fatalf("expected %s, got %s", want, value)
	}
}

func TestMarketValuePropagatesEstimateErrors(t *testing.T) {
	broken := testCrop()
	broken.AreaHectares = 0
	if _, err := MarketValue(broken, DefaultPolicy()); err == nil {
		t.Fatal("expected error for unestimable crop")
	}
}

func TestWaterRequirement(t *testing.T) {
	water, err := WaterRequirement(testCrop(), DefaultPolicy())
	if err != nil {
		t.Fatalf("water requirement: %v", err)
	}
	if !almostEqual(water, 45000) { // 4500 m3/ha over 10 ha
		t.Fatalf("expected 45000 m3, got %v", water)
	}

	broken := testCrop()
	broken.AreaHectares = -1
	if _, err := WaterRequirement(broken, DefaultPolicy()); err == nil {
		t.Fatal("expected error for invalid area")
	}
}

func TestCarbonFootprint(t *testing.T) {
	cropReport, err := CarbonFootprint(testCrop(), DefaultPolicy())
	if err != nil {
		t.Fatalf("crop footprint: %v", err)
	}
	if cropReport.Classification != CarbonSource {
		t.Fatalf("crop should be a source, got %s", cropReport.Classification)
	}
	if !almostEqual(cropReport.AnnualTonnesCO2, 5) { // 0.5 t/ha over 10 ha
		t.Fatalf("expected 5 tCO2, got %v", cropReport.AnnualTonnesCO2)
	}

	forestReport, err := CarbonFootprint(testForest(), DefaultPolicy())
	if err != nil {
		t.Fatalf("forest footprint: %v", err)
	}
	if forestReport.Classification != CarbonSink {
		t.Fatalf("forest should be a sink, got %s", forestReport.Classification)
	}
	if !almostEqual(forestReport.AnnualTonnesCO2, -200) { // 8 t/ha over 25 ha, negated
		t.Fatalf("expected -200 tCO2, got %v", forestReport.AnnualTonnesCO2)
	}
}

func TestSequestrationUnknownSpecies(t *testing.T) {
	f := testForest()
	f.Species = "baobab"
	if got := Sequestration(f, DefaultPolicy()); !almostEqual(got, 8*25) {
		t.Fatalf("default sequestration rate not applied: %v", got)
	}
}
