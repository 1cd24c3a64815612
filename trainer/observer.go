package trainer

// StageLoss is the synthetic stage emitted once between the forward and
// backward animations, carrying the freshly computed loss for the overlay.
const StageLoss = "loss"

// StageEvent describes one animation tick: which neuron is highlighted and
// which calculation stage it is showing.
type StageEvent struct {
	Session string  `json:"session"`
	Mode    string  `json:"mode"`
	Layer   string  `json:"layer"`
	Index   int     `json:"index"`
	Stage   string  `json:"stage"`
	Epoch   int     `json:"epoch"`
	Loss    float64 `json:"loss,omitempty"`
}

// EpochEvent describes one completed training step.
type EpochEvent struct {
	Session       string    `json:"session"`
	Epoch         int       `json:"epoch"`
	Loss          float64   `json:"loss"`
	Probabilities []float64 `json:"probabilities"`
	Animated      bool      `json:"animated"`
}

// Observer is the visualization sink. Implementations consume events
// read-only and must not call back into the trainer's mutating operations
// from inside a callback.
type Observer interface {
	OnStage(StageEvent)
	OnEpoch(EpochEvent)
}

type noopObserver struct{}

func (noopObserver) OnStage(StageEvent) {}
func (noopObserver) OnEpoch(EpochEvent) {}
