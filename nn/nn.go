// Package nn implements the numeric model of a small fixed-topology
// feedforward network (3 inputs, two hidden layers of 5 and 3 sigmoid
// neurons, 3 softmax outputs) used by the interactive training simulator.
//
// The package is purely computational: a forward pass produces an immutable
// per-neuron ForwardSteps snapshot, a backward pass produces a BackpropSteps
// snapshot plus proposed parameter updates, and nothing in here knows about
// timing, animation, or rendering. Updates are applied in a separate commit
// step so a caller can replay the backward snapshot neuron-by-neuron and
// commit each update as its visual stage is shown:
//
//	net := nn.NewNetwork(42)
//	steps, _ := net.Forward([]float64{0.8, 0.6, 0.7})
//	loss, _ := net.Loss(steps.Probabilities(), 2)
//	bp, _ := net.Backward(steps, 2, 0.1)
//	net.Apply(bp) // or ApplyNeuron per neuron for animated replay
//
// All arithmetic is float64. Any NaN or Inf detected in parameters or in a
// computed tensor fails fast with ErrNotFinite rather than propagating
// through the snapshot.
package nn
