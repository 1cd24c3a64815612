package nn

// Layer names used across snapshots, animation phases, and observer events.
const (
	LayerHidden1 = "layer1"
	LayerHidden2 = "layer2"
	LayerOutput  = "output"
)

// NeuronCalculation records one neuron's forward computation. Instances are
// immutable once produced; all slices are private copies.
type NeuronCalculation struct {
	Inputs     []float64 `json:"inputs"`
	Weights    []float64 `json:"weights"`
	Bias       float64   `json:"bias"`
	DotProduct float64   `json:"dot_product"`
	WithBias   float64   `json:"with_bias"`
	Activated  float64   `json:"activated"`
}

// ForwardSteps is the full snapshot of one forward pass: the input vector and
// one NeuronCalculation per neuron per layer, in forward layer order. It is
// read-only after creation.
type ForwardSteps struct {
	Input  []float64           `json:"input"`
	Layer1 []NeuronCalculation `json:"layer1"`
	Layer2 []NeuronCalculation `json:"layer2"`
	Output []NeuronCalculation `json:"output"`
}

// Probabilities returns the output layer's activated values, which sum to 1
// and represent class probabilities.
func (fs *ForwardSteps) Probabilities() []float64 {
	out := make([]float64, len(fs.Output))
	for i, n := range fs.Output {
		out[i] = n.Activated
	}
	return out
}

// Layer returns the calculations for the named layer, or nil for an unknown
// name.
func (fs *ForwardSteps) Layer(name string) []NeuronCalculation {
	switch name {
	case LayerHidden1:
		return fs.Layer1
	case LayerHidden2:
		return fs.Layer2
	case LayerOutput:
		return fs.Output
	}
	return nil
}

// BackpropNeuronData records one neuron's backward computation, including the
// proposed (not yet committed) parameter update.
type BackpropNeuronData struct {
	// Error is the delta source: target minus prediction for output
	// neurons, the weighted sum of downstream gradients for hidden neurons.
	Error float64 `json:"error"`

	// Derivative is the activation derivative at this neuron. For output
	// neurons it is recorded for display only; the effective gradient uses
	// the softmax cross-entropy simplification.
	Derivative float64 `json:"derivative"`

	// Gradient is the value that drives the weight update.
	Gradient float64 `json:"gradient"`

	WeightDeltas []float64 `json:"weight_deltas"`
	BiasDelta    float64   `json:"bias_delta"`

	OldWeights []float64 `json:"old_weights"`
	NewWeights []float64 `json:"new_weights"`
	OldBias    float64   `json:"old_bias"`
	NewBias    float64   `json:"new_bias"`
}

// BackpropSteps is the full snapshot of one backward pass, ordered
// output -> layer2 -> layer1 (reverse of forward layer order). All proposed
// updates were computed from the pre-update parameters; nothing is committed
// until Network.Apply or Network.ApplyNeuron.
type BackpropSteps struct {
	Output []BackpropNeuronData `json:"output"`
	Layer2 []BackpropNeuronData `json:"layer2"`
	Layer1 []BackpropNeuronData `json:"layer1"`

	TargetClass  int     `json:"target_class"`
	LearningRate float64 `json:"learning_rate"`
}

// Layer returns the backward records for the named layer, or nil for an
// unknown name.
func (bp *BackpropSteps) Layer(name string) []BackpropNeuronData {
	switch name {
	case LayerHidden1:
		return bp.Layer1
	case LayerHidden2:
		return bp.Layer2
	case LayerOutput:
		return bp.Output
	}
	return nil
}
