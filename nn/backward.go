package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Backward computes one backpropagation pass against the given forward
// snapshot and returns the per-neuron backward snapshot with proposed
// parameter updates. Nothing is committed: every layer's error propagation
// and every proposed delta is computed from the pre-update weights, and the
// caller commits afterwards with Apply (all at once) or ApplyNeuron (one
// neuron per animation stage).
//
// The output layer uses the softmax cross-entropy simplification: the
// effective gradient is target_i - p_i directly. The Derivative field is
// still recorded as p_i*(1-p_i) for display.
func (n *Network) Backward(steps *ForwardSteps, target int, learningRate float64) (*BackpropSteps, error) {
	if steps == nil || len(steps.Input) != InputSize ||
		len(steps.Layer1) != Hidden1Size || len(steps.Layer2) != Hidden2Size ||
		len(steps.Output) != OutputSize {
		return nil, fmt.Errorf("%w: malformed forward snapshot", ErrInputShape)
	}
	if target < 0 || target >= OutputSize {
		return nil, fmt.Errorf("%w: %d", ErrTargetClass, target)
	}
	if !IsFinite(learningRate) || learningRate <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrLearningRate, learningRate)
	}

	bp := &BackpropSteps{
		TargetClass:  target,
		LearningRate: learningRate,
	}

	// Output layer: error and effective gradient are target - prediction.
	outGrads := make([]float64, OutputSize)
	bp.Output = make([]BackpropNeuronData, OutputSize)
	for i, calc := range steps.Output {
		expected := 0.0
		if i == target {
			expected = 1.0
		}
		errVal := expected - calc.Activated
		outGrads[i] = errVal
		bp.Output[i] = neuronUpdate(errVal, SigmoidDerivative(calc.Activated), errVal,
			calc.Inputs, n.output.weights[i], n.output.bias[i], learningRate)
	}

	// Hidden layers: propagate gradients backward through the pre-update
	// weights of the layer just processed.
	layer2Errs := propagateBack(n.output.weights, outGrads)
	grads2 := make([]float64, Hidden2Size)
	bp.Layer2 = make([]BackpropNeuronData, Hidden2Size)
	for j, calc := range steps.Layer2 {
		deriv := SigmoidDerivative(calc.Activated)
		grads2[j] = layer2Errs[j] * deriv
		bp.Layer2[j] = neuronUpdate(layer2Errs[j], deriv, grads2[j],
			calc.Inputs, n.layer2.weights[j], n.layer2.bias[j], learningRate)
	}

	layer1Errs := propagateBack(n.layer2.weights, grads2)
	bp.Layer1 = make([]BackpropNeuronData, Hidden1Size)
	for j, calc := range steps.Layer1 {
		deriv := SigmoidDerivative(calc.Activated)
		grad := layer1Errs[j] * deriv
		bp.Layer1[j] = neuronUpdate(layer1Errs[j], deriv, grad,
			calc.Inputs, n.layer1.weights[j], n.layer1.bias[j], learningRate)
	}

	for _, name := range LayerNames() {
		for _, nd := range bp.Layer(name) {
			if !VecFinite(nd.NewWeights) || !IsFinite(nd.NewBias) {
				return nil, fmt.Errorf("%w: %s update", ErrNotFinite, name)
			}
		}
	}

	return bp, nil
}

// neuronUpdate builds one neuron's backward record. The delta already carries
// the correct sign because the error source is target minus output, so the
// new weight is old + delta.
func neuronUpdate(errVal, deriv, grad float64, inputs, oldWeights []float64, oldBias, lr float64) BackpropNeuronData {
	deltas := Scale(lr*grad, inputs)
	return BackpropNeuronData{
		Error:        errVal,
		Derivative:   deriv,
		Gradient:     grad,
		WeightDeltas: deltas,
		BiasDelta:    lr * grad,
		OldWeights:   cloneVec(oldWeights),
		NewWeights:   AddScaled(oldWeights, 1, deltas),
		OldBias:      oldBias,
		NewBias:      oldBias + lr*grad,
	}
}

// propagateBack computes, for each upstream neuron k, the weighted sum of
// downstream gradients: sum_i grads[i] * weights[i][k]. Implemented as
// Wᵀ·g over the downstream layer's pre-update weight matrix.
func propagateBack(weights [][]float64, grads []float64) []float64 {
	rows := len(weights)
	cols := len(weights[0])
	flat := make([]float64, 0, rows*cols)
	for _, row := range weights {
		flat = append(flat, row...)
	}
	w := mat.NewDense(rows, cols, flat)

	var out mat.VecDense
	out.MulVec(w.T(), mat.NewVecDense(rows, cloneVec(grads)))

	errs := make([]float64, cols)
	for k := range errs {
		errs[k] = out.AtVec(k)
	}
	return errs
}

// Apply commits every proposed update in the backward snapshot. It refuses
// to mutate anything if any new parameter is non-finite.
func (n *Network) Apply(bp *BackpropSteps) error {
	for _, name := range LayerNames() {
		records := bp.Layer(name)
		lp := n.params(name)
		if len(records) != len(lp.weights) {
			return fmt.Errorf("%w: %s backward snapshot", ErrInputShape, name)
		}
		for _, nd := range records {
			if !VecFinite(nd.NewWeights) || !IsFinite(nd.NewBias) {
				return fmt.Errorf("%w: %s update", ErrNotFinite, name)
			}
		}
	}
	for _, name := range LayerNames() {
		for j := range bp.Layer(name) {
			n.commitNeuron(bp, name, j)
		}
	}
	return nil
}

// ApplyNeuron commits exactly one neuron's proposed update. Committing the
// same neuron twice is a no-op because the snapshot's new weights are
// absolute values, not increments.
func (n *Network) ApplyNeuron(bp *BackpropSteps, layer string, index int) error {
	records := bp.Layer(layer)
	lp := n.params(layer)
	if records == nil || lp == nil || index < 0 || index >= len(records) {
		return fmt.Errorf("%w: %s[%d]", ErrInputShape, layer, index)
	}
	nd := records[index]
	if !VecFinite(nd.NewWeights) || !IsFinite(nd.NewBias) {
		return fmt.Errorf("%w: %s[%d] update", ErrNotFinite, layer, index)
	}
	n.commitNeuron(bp, layer, index)
	return nil
}

func (n *Network) commitNeuron(bp *BackpropSteps, layer string, index int) {
	lp := n.params(layer)
	nd := bp.Layer(layer)[index]
	lp.weights[index] = cloneVec(nd.NewWeights)
	lp.bias[index] = nd.NewBias
}
