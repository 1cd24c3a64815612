package anim

// LayerPlan names one layer to traverse and how to iterate its neurons.
// Indices run ascending by default and descending when Reverse is set,
// reflecting that a backward replay walks from the last neuron of the
// output layer back to the first neuron of the first hidden layer.
type LayerPlan struct {
	Name    string
	Count   int
	Reverse bool
}

// Config describes one replay: the layer traversal, the per-neuron stage
// sequence, the pacing waiter, and the callbacks driven at each stage.
type Config struct {
	Mode   Mode
	Layers []LayerPlan
	Stages []Stage

	// Waiter paces the replay; it is consulted after every stage.
	Waiter Waiter

	// Stop cancels the replay. It both wakes a pending wait and is polled
	// at every neuron entry and stage entry, bounding cancellation latency
	// by one stage suspension.
	Stop <-chan struct{}

	// ShouldStop optionally overrides the stop check. When nil, the Stop
	// channel is polled directly.
	ShouldStop func() bool

	// OnTick mutates visualization-facing state for the stage just entered.
	OnTick func(layer string, index int, stage Stage)

	// UpdateVisualization triggers a redraw after OnTick.
	UpdateVisualization func()

	// OnStageComplete runs after the stage has been displayed; the backward
	// replay uses it to commit a neuron's weight update at StageUpdate.
	OnStageComplete func(layer string, index int, stage Stage)

	// OnComplete runs once after the full traversal. Never invoked on
	// cancellation.
	OnComplete func()
}

// Run replays the configured traversal strictly sequentially: stages in
// config order within a neuron, neurons in the layer's index order, layers
// in config order. It returns true when the traversal completed and false
// when it was cancelled.
func Run(cfg Config) bool {
	stopped := cfg.ShouldStop
	if stopped == nil {
		stopped = func() bool {
			select {
			case <-cfg.Stop:
				return true
			default:
				return false
			}
		}
	}

	for _, layer := range cfg.Layers {
		for step := 0; step < layer.Count; step++ {
			index := step
			if layer.Reverse {
				index = layer.Count - 1 - step
			}
			if stopped() {
				return false
			}
			for _, stage := range cfg.Stages {
				if stopped() {
					return false
				}
				if cfg.OnTick != nil {
					cfg.OnTick(layer.Name, index, stage)
				}
				if cfg.UpdateVisualization != nil {
					cfg.UpdateVisualization()
				}
				if cfg.OnStageComplete != nil {
					cfg.OnStageComplete(layer.Name, index, stage)
				}
				if cfg.Waiter != nil && !cfg.Waiter.Wait(cfg.Stop) {
					return false
				}
			}
		}
	}

	if cfg.OnComplete != nil {
		cfg.OnComplete()
	}
	return true
}
