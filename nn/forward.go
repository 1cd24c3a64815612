package nn

import "fmt"

// Forward runs one forward pass and returns the full per-neuron snapshot.
// The input must have length InputSize; values are taken as given (callers
// supply normalized features) and are not clamped. Parameters are not
// mutated.
//
// Hidden layers activate with sigmoid; the output layer activates with a
// softmax across all three neurons, so the returned output activations sum
// to 1 and read as class probabilities.
func (n *Network) Forward(input []float64) (*ForwardSteps, error) {
	if len(input) != InputSize {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrInputShape, len(input), InputSize)
	}
	if !VecFinite(input) {
		return nil, fmt.Errorf("%w: input", ErrNotFinite)
	}
	for _, name := range LayerNames() {
		if !n.params(name).finite() {
			return nil, fmt.Errorf("%w: %s parameters", ErrNotFinite, name)
		}
	}

	steps := &ForwardSteps{Input: cloneVec(input)}

	layer1Out := make([]float64, Hidden1Size)
	steps.Layer1 = make([]NeuronCalculation, Hidden1Size)
	for j := range steps.Layer1 {
		calc := sigmoidNeuron(input, n.layer1.weights[j], n.layer1.bias[j])
		steps.Layer1[j] = calc
		layer1Out[j] = calc.Activated
	}

	layer2Out := make([]float64, Hidden2Size)
	steps.Layer2 = make([]NeuronCalculation, Hidden2Size)
	for j := range steps.Layer2 {
		calc := sigmoidNeuron(layer1Out, n.layer2.weights[j], n.layer2.bias[j])
		steps.Layer2[j] = calc
		layer2Out[j] = calc.Activated
	}

	// Output layer: compute all logits first, then share them through one
	// softmax.
	logits := make([]float64, OutputSize)
	steps.Output = make([]NeuronCalculation, OutputSize)
	for i := range steps.Output {
		dot := Dot(layer2Out, n.output.weights[i])
		logits[i] = dot + n.output.bias[i]
		steps.Output[i] = NeuronCalculation{
			Inputs:     cloneVec(layer2Out),
			Weights:    cloneVec(n.output.weights[i]),
			Bias:       n.output.bias[i],
			DotProduct: dot,
			WithBias:   logits[i],
		}
	}
	probs := Softmax(logits)
	for i := range steps.Output {
		steps.Output[i].Activated = probs[i]
	}

	for _, name := range LayerNames() {
		for _, calc := range steps.Layer(name) {
			if !IsFinite(calc.Activated) || !IsFinite(calc.WithBias) {
				return nil, fmt.Errorf("%w: %s activation", ErrNotFinite, name)
			}
		}
	}

	return steps, nil
}

func sigmoidNeuron(inputs, weights []float64, bias float64) NeuronCalculation {
	dot := Dot(inputs, weights)
	withBias := dot + bias
	return NeuronCalculation{
		Inputs:     cloneVec(inputs),
		Weights:    cloneVec(weights),
		Bias:       bias,
		DotProduct: dot,
		WithBias:   withBias,
		Activated:  Sigmoid(withBias),
	}
}
