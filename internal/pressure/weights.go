package pressure

// Blend weights for the five factors. They sum to 1.0.
const (
	PhaseWeight          = 0.25
	WicketWeight         = 0.25
	RunRateWeight        = 0.25
	BallsRemainingWeight = 0.15
	SituationWeight      = 0.10
)

// Upper bounds (inclusive) of the blend for each level; anything above
// HighMax is Extreme.
const (
	VeryLowMax = 0.3
	LowMax     = 0.45
	MediumMax  = 0.6
	HighMax    = 0.8
)

// Phase pressure. Formats of ShortFormatOvers or fewer use fixed over
// numbers; longer formats use the elapsed proportion of the innings.
const (
	ShortFormatOvers    = 6
	ShortPowerplayOvers = 6
	ShortDeathOvers     = 4

	ShortPowerplayPressure = 0.3
	ShortDeathPressure     = 0.9
	ShortMiddlePressure    = 0.5

	EarlyProportion = 0.3
	FinalProportion = 0.8
	EarlyPressure   = 0.2
	FinalPressure   = 0.8
	MiddlePressure  = 0.4
)

// Wicket pressure.
const (
	WicketsPerSide       = 10.0
	MaxFallenPressure    = 0.8
	RecentWicketPressure = 0.2
	MaxRecentPressure    = 0.4
)

// Run-rate pressure: the rate used when no target is known.
const NoTargetPressure = 0.3

// Situation pressure.
const (
	SituationWicket   = 0.3
	SituationBoundary = 0.2
	SituationDot      = 0.1
	MaxSituation      = 0.5
)

// threshold pairs a step limit with the pressure it maps to.
type threshold struct {
	Limit    float64
	Pressure float64
}

// runRateSteps map a required run rate (inclusive upper limit) to pressure.
// Rates above the last limit map to 1.0.
var runRateSteps = []threshold{
	{6, 0.2},
	{8, 0.4},
	{10, 0.6},
	{12, 0.8},
}

// remainingSteps map the proportion of balls remaining (exclusive lower
// limit) to pressure. Proportions at or below the last limit map to 1.0.
var remainingSteps = []threshold{
	{0.8, 0.1},
	{0.5, 0.3},
	{0.2, 0.6},
	{0.1, 0.8},
}
