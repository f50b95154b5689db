package risk

import "github.com/shopspring/decimal"

// Tier is the display label of a risk classification
type Tier string

const (
	// Exposure policy tiers
	TierVeryHigh Tier = "Very High"
	TierMedium   Tier = "Medium"
	TierLow      Tier = "Low"

	// SMS and findings policy tiers
	TierCritical Tier = "Critical"
	TierHigh     Tier = "High"
	TierNormal   Tier = "Normal"
)

func (t Tier) String() string { return string(t) }

// Level orders tiers across policies: every policy maps onto the same three levels.
type Level int

const (
	LevelLow Level = iota
	LevelMid
	LevelTop
)

// Display colors per level
const (
	ColorRed    = "#e74c3c"
	ColorOrange = "#f39c12"
	ColorGreen  = "#27ae60"
)

// Cadence is the recommended inspection frequency for a tier
type Cadence struct {
	Name          string `json:"name"`
	VisitsPerYear int    `json:"visits_per_year"`
	Schedule      string `json:"schedule"`
}

func (c Cadence) String() string {
	return c.Name + " (" + c.Schedule + ")"
}

var (
	CadenceQuarterly  = Cadence{Name: "Quarterly", VisitsPerYear: 4, Schedule: "Jan-Apr-Jul-Oct"}
	CadenceSemiannual = Cadence{Name: "Semiannual", VisitsPerYear: 2, Schedule: "Feb-Aug"}
	CadenceAnnual     = Cadence{Name: "Annual", VisitsPerYear: 1, Schedule: "Jun"}
)

// Assessment is the result of classifying one operator
type Assessment struct {
	Policy   string          `json:"policy"`
	Tier     Tier            `json:"tier"`
	Level    Level           `json:"level"`
	Color    string          `json:"color"`
	Cadence  Cadence         `json:"cadence"`
	SMSScore int             `json:"sms_score"`
	Score    decimal.Decimal `json:"score"`
}

var tierLevels = map[Tier]Level{
	TierVeryHigh: LevelTop,
	TierCritical: LevelTop,
	TierMedium:   LevelMid,
	TierHigh:     LevelMid,
	TierLow:      LevelLow,
	TierNormal:   LevelLow,
}

// WithStoredTier relabels the assessment with a tier read back from storage
// and derives color and cadence from that label. An empty or unknown label
// leaves the assessment as classified.
func (a Assessment) WithStoredTier(tier string) Assessment {
	level, ok := tierLevels[Tier(tier)]
	if !ok {
		return a
	}

	a.Tier = Tier(tier)
	a.Level = level
	a.Color = colorFor(level)
	a.Cadence = cadenceFor(level)
	return a
}

func colorFor(l Level) string {
	switch l {
	case LevelTop:
		return ColorRed
	case LevelMid:
		return ColorOrange
	default:
		return ColorGreen
	}
}

func cadenceFor(l Level) Cadence {
	switch l {
	case LevelTop:
		return CadenceQuarterly
	case LevelMid:
		return CadenceSemiannual
	default:
		return CadenceAnnual
	}
}

func assess(policy string, tier Tier, level Level, sms int, score decimal.Decimal) Assessment {
	return Assessment{
		Policy:   policy,
		Tier:     tier,
		Level:    level,
		Color:    colorFor(level),
		Cadence:  cadenceFor(level),
		SMSScore: sms,
		Score:    score,
	}
}
