package anim

// Mode selects which stage sequence a replay uses.
type Mode int

const (
	ModeForward Mode = iota
	ModeBackward
)

func (m Mode) String() string {
	if m == ModeBackward {
		return "backward"
	}
	return "forward"
}

// Stage identifies one sub-step of a single neuron's calculation.
type Stage string

// Forward stages, in replay order.
const (
	StageConnections Stage = "connections"
	StageDotProduct  Stage = "dotProduct"
	StageBias        Stage = "bias"
	StageActivation  Stage = "activation"
)

// Backward stages, in replay order. StageUpdate is where the orchestrator
// commits the neuron's weight update, so a cancelled replay leaves exactly
// the already-shown updates applied.
const (
	StageError           Stage = "error"
	StageDerivative      Stage = "derivative"
	StageGradient        Stage = "gradient"
	StageWeightDelta     Stage = "weightDelta"
	StageAllWeightDeltas Stage = "allWeightDeltas"
	StageUpdate          Stage = "update"
)

// StagesFor returns the stage sequence for a mode.
func StagesFor(m Mode) []Stage {
	if m == ModeBackward {
		return []Stage{StageError, StageDerivative, StageGradient, StageWeightDelta, StageAllWeightDeltas, StageUpdate}
	}
	return []Stage{StageConnections, StageDotProduct, StageBias, StageActivation}
}
