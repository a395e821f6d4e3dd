package analysis

import (
	"fmt"
	"time"

	"agricore/pkg/domain"
)

// EstimateYield computes the production forecast for a crop or forest stand.
// It fails with ErrInsufficientData when the required attributes are missing
// or invalid.
func EstimateYield(entity domain.Entity, policy Policy) (YieldEstimate, error) {
	switch e := entity.(type) {
	case domain.Crop:
		return EstimateCropYield(e, policy)
	case domain.Forest:
		return EstimateForestYield(e, policy)
	default:
		return YieldEstimate{}, fmt.Errorf("unsupported entity kind %s", entity.Kind())
	}
}

// EstimateCropYield applies the per-type base rate scaled by area and growth
// stage. Harvested crops report their recorded yield verbatim (zero when
// none was recorded).
func EstimateCropYield(c domain.Crop, policy Policy) (YieldEstimate, error) {
	if c.AreaHectares <= 0 {
		return YieldEstimate{}, domain.ErrInsufficientData{Entity: domain.EntityCrop, ID: c.ID, Missing: "positive area"}
	}
	if c.Type == "" {
		return YieldEstimate{}, domain.ErrInsufficientData{Entity: domain.EntityCrop, ID: c.ID, Missing: "crop type"}
	}

	if c.Stage == domain.StageHarvested {
		var recorded float64
		if c.LastYieldTonnes != nil {
			recorded = *c.LastYieldTonnes
		}
		return YieldEstimate{
			EntityID:   c.ID,
			Entity:     domain.EntityCrop,
			Quantity:   recorded,
			Unit:       UnitTonnes,
			PerHectare: recorded / c.AreaHectares,
			Confidence: ConfidenceRecorded,
		}, nil
	}

	rate := policy.cropYieldRate(c.Type)
	quantity := rate * c.AreaHectares * policy.stageMultiplier(c.Stage)
	if c.Organic {
		quantity *= policy.OrganicYieldFactor
	}
	return YieldEstimate{
		EntityID:   c.ID,
		Entity:     domain.EntityCrop,
		Quantity:   quantity,
		Unit:       UnitTonnes,
		PerHectare: rate,
		Confidence: ConfidenceEstimated,
	}, nil
}

// EstimateForestYield applies the per-species timber rate scaled by area,
// discounted while the stand is young.
func EstimateForestYield(f domain.Forest, policy Policy) (YieldEstimate, error) {
	if f.AreaHectares <= 0 {
		return YieldEstimate{}, domain.ErrInsufficientData{Entity: domain.EntityForest, ID: f.ID, Missing: "positive area"}
	}
	if f.Species == "" {
		return YieldEstimate{}, domain.ErrInsufficientData{Entity: domain.EntityForest, ID: f.ID, Missing: "species"}
	}

	rate := policy.timberRate(f.Species)
	multiplier := 1.0
	if f.StandAgeYears < policy.YoungStandAgeYears {
		multiplier = policy.YoungStandMultiplier
	}
	return YieldEstimate{
		EntityID:   f.ID,
		Entity:     domain.EntityForest,
		Quantity:   rate * f.AreaHectares * multiplier,
		Unit:       UnitCubicMeters,
		PerHectare: rate,
		Confidence: ConfidenceEstimated,
	}, nil
}

// recRule is one entry of the ordered recommendation table. Rules are
// evaluated in priority order; the first match wins.
type recRule struct {
	category string
	priority int
	match    func(e domain.Entity, p Policy, now time.Time) (string, bool)
}

// The table is ordered by ascending priority value (lower outranks higher).
// Harvest and stand-care rules outrank informational ones; the seasonal
// entry always matches and terminates the scan.
var recommendationTable = []recRule{
	{
		category: "harvest-window",
		priority: 10,
		match: func(e domain.Entity, p Policy, now time.Time) (string, bool) {
			c, ok := e.(domain.Crop)
			if !ok || c.Stage == domain.StageHarvested || c.ExpectedHarvestAt == nil {
				return "", false
			}
			until := c.ExpectedHarvestAt.Sub(now)
			if until < 0 || until > time.Duration(p.HarvestWindowDays)*24*time.Hour {
				return "", false
			}
			days := int(until / (24 * time.Hour))
			return fmt.Sprintf("Harvest window approaching: expected harvest in %d days. Schedule equipment and labor now.", days), true
		},
	},
	{
		category: "young-stand",
		priority: 20,
		match: func(e domain.Entity, p Policy, _ time.Time) (string, bool) {
			f, ok := e.(domain.Forest)
			if !ok || f.StandAgeYears >= p.YoungStandAgeYears {
				return "", false
			}
			return fmt.Sprintf("Young stand (%d years): monitor growth, control weeds, and protect against browsing.", f.StandAgeYears), true
		},
	},
	{
		category: "inventory-overdue",
		priority: 30,
		match: func(e domain.Entity, p Policy, now time.Time) (string, bool) {
			f, ok := e.(domain.Forest)
			if !ok {
				return "", false
			}
			last := f.PlantedAt
			if f.LastInventoryAt != nil {
				last = *f.LastInventoryAt
			}
			if now.Sub(last) <= time.Duration(p.InventoryStalenessDays)*24*time.Hour {
				return "", false
			}
			return "Inventory overdue: schedule a stand inventory to refresh volume and health data.", true
		},
	},
	{
		category: "seedling-care",
		priority: 40,
		match: func(e domain.Entity, _ Policy, _ time.Time) (string, bool) {
			c, ok := e.(domain.Crop)
			if !ok || c.Stage != domain.StageSeedling {
				return "", false
			}
			return "Seedling stage: keep soil moisture steady and watch for early pest pressure.", true
		},
	},
	{
		category: "post-harvest",
		priority: 50,
		match: func(e domain.Entity, _ Policy, _ time.Time) (string, bool) {
			c, ok := e.(domain.Crop)
			if !ok || c.Stage != domain.StageHarvested {
				return "", false
			}
			if c.LastYieldTonnes == nil {
				return "Harvest complete: record the actual yield to improve future estimates.", true
			}
			return "Harvest complete: prepare the field for the next rotation.", true
		},
	},
	{
		category: "seasonal",
		priority: 100,
		match: func(_ domain.Entity, _ Policy, now time.Time) (string, bool) {
			return SeasonalAdvice(now.Month()).Summary(), true
		},
	},
}

// Recommend returns exactly one recommendation for the entity: the
// highest-priority matching rule from the fixed table.
func Recommend(entity domain.Entity, policy Policy, now time.Time) (Recommendation, error) {
	switch e := entity.(type) {
	case domain.Crop:
		if e.AreaHectares <= 0 {
			return Recommendation{}, domain.ErrInsufficientData{Entity: domain.EntityCrop, ID: e.ID, Missing: "positive area"}
		}
	case domain.Forest:
		if e.AreaHectares <= 0 {
			return Recommendation{}, domain.ErrInsufficientData{Entity: domain.EntityForest, ID: e.ID, Missing: "positive area"}
		}
	default:
		return Recommendation{}, fmt.Errorf("unsupported entity kind %s", entity.Kind())
	}

	for _, rule := range recommendationTable {
		if msg, ok := rule.match(entity, policy, now); ok {
			return Recommendation{Category: rule.category, Message: msg, Priority: rule.priority}, nil
		}
	}
	// The seasonal entry always matches; reaching here means the table was
	// emptied, which is a programming error.
	return Recommendation{}, fmt.Errorf("no recommendation rule matched")
}

// InsightFor bundles the yield estimate and recommendation for one entity.
func InsightFor(entity domain.Entity, policy Policy, now time.Time) (Insight, error) {
	estimate, err := EstimateYield(entity, policy)
	if err != nil {
		return Insight{}, err
	}
	rec, err := Recommend(entity, policy, now)
	if err != nil {
		return Insight{}, err
	}
	return Insight{
		EntityID:       estimate.EntityID,
		Entity:         estimate.Entity,
		Yield:          estimate,
		Recommendation: rec,
	}, nil
}

// Aggregate computes summary statistics over a collection of entities.
// Entities whose yield cannot be estimated contribute their area and counts
// but zero yield.
func Aggregate(entities []domain.Entity, policy Policy) AggregateReport {
	report := AggregateReport{
		CountsByStage:    make(map[domain.GrowthStage]int),
		CountsByCropType: make(map[domain.CropType]int),
	}
	for _, entity := range entities {
		report.TotalCount++
		switch e := entity.(type) {
		case domain.Crop:
			report.CropCount++
			report.CropAreaHectares += e.AreaHectares
			report.TotalAreaHectares += e.AreaHectares
			report.CountsByStage[e.Stage]++
			report.CountsByCropType[e.Type]++
			if est, err := EstimateCropYield(e, policy); err == nil {
				report.EstimatedCropTonnes += est.Quantity
			}
		case domain.Forest:
			report.ForestCount++
			report.ForestAreaHectares += e.AreaHectares
			report.TotalAreaHectares += e.AreaHectares
			if est, err := EstimateForestYield(e, policy); err == nil {
				report.EstimatedTimberCubicMeters += est.Quantity
			}
		}
	}
	report.TotalEstimatedYield = report.EstimatedCropTonnes + report.EstimatedTimberCubicMeters
	if report.TotalCount > 0 {
		report.AverageEstimatedYield = report.TotalEstimatedYield / float64(report.TotalCount)
	}
	return report
}

// Analyze produces the full portfolio report: aggregate statistics,
// per-entity insights, portfolio recommendations, and a diversification risk
// label.
func Analyze(entities []domain.Entity, policy Policy, now time.Time) Analysis {
	stats := Aggregate(entities, policy)
	out := Analysis{
		Statistics: stats,
		RiskLevel:  RiskLow,
	}

	for _, entity := range entities {
		insight, err := InsightFor(entity, policy, now)
		if err != nil {
			continue
		}
		out.Insights = append(out.Insights, insight)
	}

	if stats.TotalCount == 0 {
		out.Recommendations = append(out.Recommendations, "Start by adding your first crop or forest plantation.")
		return out
	}

	if stats.CropCount > 0 && stats.ForestCount == 0 {
		out.Recommendations = append(out.Recommendations, "Consider adding forestry for carbon sequestration and diversification.")
	}
	if stats.ForestCount > 0 {
		var total float64
		for _, entity := range entities {
			if f, ok := entity.(domain.Forest); ok {
				total += Sequestration(f, policy)
			}
		}
		out.CarbonSequestrationTCO2 = total
		out.Recommendations = append(out.Recommendations,
			fmt.Sprintf("Your forests sequester approximately %.2f tonnes of CO2 per year.", total))
	}
	if stats.TotalAreaHectares > policy.LargeHoldingHectares {
		out.Recommendations = append(out.Recommendations, "Consider precision agriculture techniques for large-scale management.")
	}
	switch {
	case stats.TotalCount == 1:
		out.RiskLevel = RiskMedium
		out.Recommendations = append(out.Recommendations, "Diversify your holdings to reduce risk from market fluctuations and pests.")
	case stats.TotalCount >= 3:
		out.Recommendations = append(out.Recommendations, "Good diversification across holdings; this reduces overall risk.")
	}
	return out
}
