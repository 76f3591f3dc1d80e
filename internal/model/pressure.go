package model

// PressureLevel is the discretized intensity of a match situation.
type PressureLevel int

const (
	PressureVeryLow PressureLevel = iota + 1
	PressureLow
	PressureMedium
	PressureHigh
	PressureExtreme
)

func (l PressureLevel) String() string {
	switch l {
	case PressureVeryLow:
		return "VeryLow"
	case PressureLow:
		return "Low"
	case PressureMedium:
		return "Medium"
	case PressureHigh:
		return "High"
	case PressureExtreme:
		return "Extreme"
	default:
		return "?"
	}
}

// Weight returns the fixed multiplier for the level. Unknown levels weigh 0.
func (l PressureLevel) Weight() float64 {
	switch l {
	case PressureVeryLow:
		return 0.2
	case PressureLow:
		return 0.4
	case PressureMedium:
		return 0.6
	case PressureHigh:
		return 0.8
	case PressureExtreme:
		return 1.0
	default:
		return 0
	}
}

// PressureFactors are the five sub-pressures, each in [0,1].
type PressureFactors struct {
	Phase          float64 `json:"phase_pressure"`
	Wicket         float64 `json:"wicket_pressure"`
	RunRate        float64 `json:"run_rate_pressure"`
	BallsRemaining float64 `json:"balls_remaining_pressure"`
	Situation      float64 `json:"situation_pressure"`
}

// PressureContext is the classifier's verdict for one delivery.
type PressureContext struct {
	Level   PressureLevel
	Weight  float64
	Factors PressureFactors
	Blend   float64 // weighted factor total the level was bucketed from
}
