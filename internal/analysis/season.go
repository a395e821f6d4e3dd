package analysis

import (
	"fmt"
	"strings"
	"time"
)

// SeasonGuide describes the typical activities for one calendar month in a
// temperate northern-hemisphere operation.
type SeasonGuide struct {
	Month        time.Month `json:"month"`
	Season       string     `json:"season"`
	Activities   []string   `json:"activities"`
	CropsToPlant []string   `json:"crops_to_plant"`
	ForestryTasks []string  `json:"forestry_tasks"`
}

var seasonCalendar = map[time.Month]SeasonGuide{
	time.January: {
		Season:        "winter",
		Activities:    []string{"equipment maintenance", "planning next season"},
		CropsToPlant:  nil,
		ForestryTasks: []string{"dormant-season pruning", "timber harvest on frozen ground"},
	},
	time.February: {
		Season:        "winter",
		Activities:    []string{"seed ordering", "soil testing"},
		CropsToPlant:  nil,
		ForestryTasks: []string{"dormant-season pruning", "site preparation"},
	},
	time.March: {
		Season:        "spring",
		Activities:    []string{"field preparation", "early planting"},
		CropsToPlant:  []string{"wheat", "potato", "peas"},
		ForestryTasks: []string{"tree planting", "firebreak maintenance"},
	},
	time.April: {
		Season:        "spring",
		Activities:    []string{"planting", "fertilization"},
		CropsToPlant:  []string{"corn", "soybean", "vegetables"},
		ForestryTasks: []string{"tree planting", "weed control"},
	},
	time.May: {
		Season:        "spring",
		Activities:    []string{"planting", "irrigation setup"},
		CropsToPlant:  []string{"rice", "cotton", "vegetables"},
		ForestryTasks: []string{"seedling care", "pest monitoring"},
	},
	time.June: {
		Season:        "summer",
		Activities:    []string{"irrigation", "pest control"},
		CropsToPlant:  []string{"late vegetables"},
		ForestryTasks: []string{"fire watch", "thinning"},
	},
	time.July: {
		Season:        "summer",
		Activities:    []string{"irrigation", "crop monitoring"},
		CropsToPlant:  nil,
		ForestryTasks: []string{"fire watch", "growth measurement"},
	},
	time.August: {
		Season:        "summer",
		Activities:    []string{"early harvest", "irrigation"},
		CropsToPlant:  []string{"winter wheat preparation"},
		ForestryTasks: []string{"fire watch", "inventory"},
	},
	time.September: {
		Season:        "autumn",
		Activities:    []string{"harvest", "storage preparation"},
		CropsToPlant:  []string{"winter wheat", "cover crops"},
		ForestryTasks: []string{"harvest planning", "inventory"},
	},
	time.October: {
		Season:        "autumn",
		Activities:    []string{"harvest", "field cleanup"},
		CropsToPlant:  []string{"winter wheat", "garlic"},
		ForestryTasks: []string{"timber harvest", "planting site selection"},
	},
	time.November: {
		Season:        "autumn",
		Activities:    []string{"late harvest", "soil amendment"},
		CropsToPlant:  nil,
		ForestryTasks: []string{"timber harvest", "equipment storage"},
	},
	time.December: {
		Season:        "winter",
		Activities:    []string{"planning", "record keeping"},
		CropsToPlant:  nil,
		ForestryTasks: []string{"dormant-season pruning", "annual review"},
	},
}

// SeasonalAdvice returns the guide for the given month.
func SeasonalAdvice(month time.Month) SeasonGuide {
	guide := seasonCalendar[month]
	guide.Month = month
	return guide
}

// Summary renders the guide as a single advisory sentence.
func (g SeasonGuide) Summary() string {
	msg := fmt.Sprintf("%s (%s): focus on %s.", g.Month, g.Season, strings.Join(g.Activities, " and "))
	if len(g.CropsToPlant) > 0 {
		msg += fmt.Sprintf(" Good time to plant %s.", strings.Join(g.CropsToPlant, ", "))
	}
	return msg
}
