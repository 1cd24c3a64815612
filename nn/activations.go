package nn

import "math"

// Sigmoid computes 1 / (1 + exp(-z)).
func Sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

// SigmoidDerivative computes the derivative of the sigmoid expressed in
// terms of the already-computed activation y = sigmoid(z):
// d/dz sigmoid(z) = y * (1 - y).
func SigmoidDerivative(y float64) float64 {
	return y * (1.0 - y)
}

// Softmax computes exp(z_i) / sum(exp(z_j)) over the logits. The maximum
// logit is subtracted before exponentiating for numeric stability, which
// leaves the result unchanged. The returned values are non-negative and sum
// to 1.
func Softmax(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, z := range logits[1:] {
		if z > maxLogit {
			maxLogit = z
		}
	}

	out := make([]float64, len(logits))
	sum := 0.0
	for i, z := range logits {
		out[i] = math.Exp(z - maxLogit)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// lossEpsilon floors predicted probabilities inside CrossEntropy so that a
// zero prediction yields a large finite loss instead of +Inf.
const lossEpsilon = 1e-12

// CrossEntropy computes -log(predictions[target]) for a one-hot target.
func CrossEntropy(predictions []float64, target int) float64 {
	p := predictions[target]
	if p < lossEpsilon {
		p = lossEpsilon
	}
	return -math.Log(p)
}
