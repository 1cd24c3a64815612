package nn

import (
	"math"
	"math/rand"
)

// Fixed topology of the simulator network.
const (
	InputSize   = 3
	Hidden1Size = 5
	Hidden2Size = 3
	OutputSize  = 3
)

// layerParams holds one layer's weights (one row per neuron, row length equal
// to the preceding layer's neuron count) and one bias per neuron.
type layerParams struct {
	weights [][]float64
	bias    []float64
}

func (lp *layerParams) finite() bool {
	return MatFinite(lp.weights) && VecFinite(lp.bias)
}

// Network owns the parameters of the fixed 3-5-3-3 feedforward network.
// Parameters are mutated only by Apply/ApplyNeuron after a backward pass, or
// by Reset; a forward pass has no side effects on them.
//
// Network is not safe for concurrent use; the training orchestrator serializes
// all access.
type Network struct {
	layer1 layerParams
	layer2 layerParams
	output layerParams
}

// NewNetwork creates a network with small pseudo-random parameters derived
// from seed. The same seed always produces the same parameters.
func NewNetwork(seed int64) *Network {
	n := &Network{}
	n.Reset(seed)
	return n
}

// Reset reinitializes all weights and biases from seed. Weights use a
// xavier-style uniform range scaled by fan-in and fan-out; biases start at
// zero.
func (n *Network) Reset(seed int64) {
	rng := rand.New(rand.NewSource(seed))
	n.layer1 = initLayer(rng, Hidden1Size, InputSize, Hidden2Size)
	n.layer2 = initLayer(rng, Hidden2Size, Hidden1Size, OutputSize)
	n.output = initLayer(rng, OutputSize, Hidden2Size, OutputSize)
}

func initLayer(rng *rand.Rand, neurons, fanIn, fanOut int) layerParams {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	lp := layerParams{
		weights: make([][]float64, neurons),
		bias:    make([]float64, neurons),
	}
	for j := range lp.weights {
		row := make([]float64, fanIn)
		for k := range row {
			row[k] = 2*rng.Float64()*limit - limit
		}
		lp.weights[j] = row
	}
	return lp
}

// FillConstant sets every weight to w and every bias to b. Used by demos and
// tests that need hand-computable parameters.
func (n *Network) FillConstant(w, b float64) {
	for _, lp := range []*layerParams{&n.layer1, &n.layer2, &n.output} {
		for _, row := range lp.weights {
			for k := range row {
				row[k] = w
			}
		}
		for j := range lp.bias {
			lp.bias[j] = b
		}
	}
}

// LayerNames returns the layer names in forward order.
func LayerNames() []string {
	return []string{LayerHidden1, LayerHidden2, LayerOutput}
}

// LayerSizes returns the neuron count per layer name.
func LayerSizes() map[string]int {
	return map[string]int{
		LayerHidden1: Hidden1Size,
		LayerHidden2: Hidden2Size,
		LayerOutput:  OutputSize,
	}
}

func (n *Network) params(layer string) *layerParams {
	switch layer {
	case LayerHidden1:
		return &n.layer1
	case LayerHidden2:
		return &n.layer2
	case LayerOutput:
		return &n.output
	}
	return nil
}

// LayerWeights returns a copy of the named layer's weight matrix, or nil for
// an unknown name.
func (n *Network) LayerWeights(layer string) [][]float64 {
	lp := n.params(layer)
	if lp == nil {
		return nil
	}
	return cloneMat(lp.weights)
}

// LayerBiases returns a copy of the named layer's bias vector, or nil for an
// unknown name.
func (n *Network) LayerBiases(layer string) []float64 {
	lp := n.params(layer)
	if lp == nil {
		return nil
	}
	return cloneVec(lp.bias)
}

// SetLayerWeights replaces the named layer's weight matrix. The shape must
// match the fixed topology exactly.
func (n *Network) SetLayerWeights(layer string, weights [][]float64) error {
	lp := n.params(layer)
	if lp == nil || len(weights) != len(lp.weights) {
		return ErrInputShape
	}
	for j, row := range weights {
		if len(row) != len(lp.weights[j]) {
			return ErrInputShape
		}
	}
	lp.weights = cloneMat(weights)
	return nil
}

// SetLayerBiases replaces the named layer's bias vector.
func (n *Network) SetLayerBiases(layer string, bias []float64) error {
	lp := n.params(layer)
	if lp == nil || len(bias) != len(lp.bias) {
		return ErrInputShape
	}
	lp.bias = cloneVec(bias)
	return nil
}

// Loss computes the cross-entropy loss -log(predictions[target]) with a
// numeric floor so a zero prediction yields a large finite value.
func (n *Network) Loss(predictions []float64, target int) (float64, error) {
	if len(predictions) != OutputSize {
		return 0, ErrInputShape
	}
	if target < 0 || target >= OutputSize {
		return 0, ErrTargetClass
	}
	if !VecFinite(predictions) {
		return 0, ErrNotFinite
	}
	return CrossEntropy(predictions, target), nil
}
