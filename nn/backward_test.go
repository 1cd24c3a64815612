package nn

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
)

var scenarioInput = []float64{0.8, 0.6, 0.7}

func trainedPair(t *testing.T, seed int64) (*Network, *ForwardSteps, *BackpropSteps) {
	t.Helper()
	net := NewNetwork(seed)
	steps, err := net.Forward(scenarioInput)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	bp, err := net.Backward(steps, 2, 0.1)
	if err != nil {
		t.Fatalf("Backward: %v", err)
	}
	return net, steps, bp
}

func TestBackwardOutputLayer(t *testing.T) {
	_, steps, bp := trainedPair(t, 3)

	for i, nd := range bp.Output {
		expected := 0.0
		if i == 2 {
			expected = 1.0
		}
		p := steps.Output[i].Activated
		if !almostEqual(nd.Error, expected-p, 1e-15) {
			t.Errorf("output[%d] error = %v, want %v", i, nd.Error, expected-p)
		}
		// Softmax cross-entropy simplification: effective gradient is the
		// error itself; the derivative field is display-only.
		if nd.Gradient != nd.Error {
			t.Errorf("output[%d] gradient = %v, want error %v", i, nd.Gradient, nd.Error)
		}
		if !almostEqual(nd.Derivative, p*(1-p), 1e-15) {
			t.Errorf("output[%d] derivative = %v, want %v", i, nd.Derivative, p*(1-p))
		}
		for k, delta := range nd.WeightDeltas {
			want := 0.1 * nd.Gradient * steps.Output[i].Inputs[k]
			if !almostEqual(delta, want, 1e-15) {
				t.Errorf("output[%d] weight delta[%d] = %v, want %v", i, k, delta, want)
			}
			if !almostEqual(nd.NewWeights[k], nd.OldWeights[k]+delta, 1e-15) {
				t.Errorf("output[%d] new weight[%d] inconsistent with delta", i, k)
			}
		}
		if !almostEqual(nd.BiasDelta, 0.1*nd.Gradient, 1e-15) {
			t.Errorf("output[%d] bias delta = %v", i, nd.BiasDelta)
		}
	}
}

func TestBackwardHiddenGradients(t *testing.T) {
	_, steps, bp := trainedPair(t, 3)

	for j, nd := range bp.Layer2 {
		y := steps.Layer2[j].Activated
		if !almostEqual(nd.Derivative, y*(1-y), 1e-15) {
			t.Errorf("layer2[%d] derivative = %v, want %v", j, nd.Derivative, y*(1-y))
		}
		if !almostEqual(nd.Gradient, nd.Error*nd.Derivative, 1e-15) {
			t.Errorf("layer2[%d] gradient = %v, want error*derivative", j, nd.Gradient)
		}
	}
}

// TestBackwardUsesPreUpdateWeights guards the ordering invariant: error
// propagation into layer1 must use layer2's weights from before layer2's own
// update was applied.
func TestBackwardUsesPreUpdateWeights(t *testing.T) {
	net := NewNetwork(3)
	oldLayer2 := net.LayerWeights(LayerHidden2)

	steps, err := net.Forward(scenarioInput)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	bp, err := net.Backward(steps, 2, 0.1)
	if err != nil {
		t.Fatalf("Backward: %v", err)
	}

	// Backward itself must not have touched the parameters.
	if !reflect.DeepEqual(oldLayer2, net.LayerWeights(LayerHidden2)) {
		t.Fatal("Backward mutated layer2 weights before commit")
	}

	for k, nd := range bp.Layer1 {
		withOld := 0.0
		withNew := 0.0
		for j := range bp.Layer2 {
			withOld += bp.Layer2[j].Gradient * oldLayer2[j][k]
			withNew += bp.Layer2[j].Gradient * bp.Layer2[j].NewWeights[k]
		}
		if !almostEqual(nd.Error, withOld, 1e-12) {
			t.Errorf("layer1[%d] error = %v, want %v from pre-update weights", k, nd.Error, withOld)
		}
		if almostEqual(withOld, withNew, 1e-15) {
			t.Fatalf("layer1[%d]: old and new propagation coincide, test has no teeth", k)
		}
	}
}

// TestBackwardMatchesNumericGradient cross-checks the analytic deltas
// against central finite differences of the loss: delta = -lr * dL/dw.
func TestBackwardMatchesNumericGradient(t *testing.T) {
	const (
		seed   = 5
		target = 2
		lr     = 0.1
	)
	_, _, bp := trainedPair(t, seed)

	lossWithWeight := func(layer string, j, k int) func(float64) float64 {
		return func(x float64) float64 {
			n := NewNetwork(seed)
			w := n.LayerWeights(layer)
			w[j][k] = x
			if err := n.SetLayerWeights(layer, w); err != nil {
				t.Fatalf("SetLayerWeights: %v", err)
			}
			steps, err := n.Forward(scenarioInput)
			if err != nil {
				t.Fatalf("Forward: %v", err)
			}
			loss, err := n.Loss(steps.Probabilities(), target)
			if err != nil {
				t.Fatalf("Loss: %v", err)
			}
			return loss
		}
	}

	probes := []struct {
		layer string
		j, k  int
		delta float64
	}{
		{LayerOutput, 0, 1, bp.Output[0].WeightDeltas[1]},
		{LayerHidden2, 1, 2, bp.Layer2[1].WeightDeltas[2]},
		{LayerHidden1, 3, 0, bp.Layer1[3].WeightDeltas[0]},
	}

	ref := NewNetwork(seed)
	for _, probe := range probes {
		w0 := ref.LayerWeights(probe.layer)[probe.j][probe.k]
		numeric := fd.Derivative(lossWithWeight(probe.layer, probe.j, probe.k), w0,
			&fd.Settings{Formula: fd.Central})
		want := -lr * numeric
		if !almostEqual(probe.delta, want, 1e-6) {
			t.Errorf("%s[%d] weight[%d] delta = %v, numeric says %v",
				probe.layer, probe.j, probe.k, probe.delta, want)
		}
	}
}

func TestApplyCommitsAllUpdates(t *testing.T) {
	net, _, bp := trainedPair(t, 3)
	if err := net.Apply(bp); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for i, row := range net.LayerWeights(LayerOutput) {
		if !reflect.DeepEqual(row, bp.Output[i].NewWeights) {
			t.Errorf("output[%d] weights not committed", i)
		}
	}
	for j, b := range net.LayerBiases(LayerHidden1) {
		if b != bp.Layer1[j].NewBias {
			t.Errorf("layer1[%d] bias not committed", j)
		}
	}
}

func TestApplyNeuronMatchesApply(t *testing.T) {
	whole, _, bp := trainedPair(t, 3)
	if err := whole.Apply(bp); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	piecewise := NewNetwork(3)
	// Commit in backward visual order: output descending, then layer2,
	// then layer1.
	for _, layer := range []string{LayerOutput, LayerHidden2, LayerHidden1} {
		records := bp.Layer(layer)
		for idx := len(records) - 1; idx >= 0; idx-- {
			if err := piecewise.ApplyNeuron(bp, layer, idx); err != nil {
				t.Fatalf("ApplyNeuron(%s, %d): %v", layer, idx, err)
			}
		}
	}

	for _, layer := range LayerNames() {
		if !reflect.DeepEqual(whole.LayerWeights(layer), piecewise.LayerWeights(layer)) {
			t.Errorf("layer %s weights diverge between Apply and ApplyNeuron", layer)
		}
		if !reflect.DeepEqual(whole.LayerBiases(layer), piecewise.LayerBiases(layer)) {
			t.Errorf("layer %s biases diverge between Apply and ApplyNeuron", layer)
		}
	}
}

func TestApplyNeuronIdempotent(t *testing.T) {
	net, _, bp := trainedPair(t, 3)
	if err := net.ApplyNeuron(bp, LayerOutput, 1); err != nil {
		t.Fatalf("ApplyNeuron: %v", err)
	}
	once := net.LayerWeights(LayerOutput)
	if err := net.ApplyNeuron(bp, LayerOutput, 1); err != nil {
		t.Fatalf("ApplyNeuron: %v", err)
	}
	if !reflect.DeepEqual(once, net.LayerWeights(LayerOutput)) {
		t.Error("double commit changed weights; new weights must be absolute")
	}
}

func TestApplyNeuronValidation(t *testing.T) {
	net, _, bp := trainedPair(t, 3)
	if err := net.ApplyNeuron(bp, "bogus", 0); !errors.Is(err, ErrInputShape) {
		t.Errorf("bogus layer: got %v, want ErrInputShape", err)
	}
	if err := net.ApplyNeuron(bp, LayerOutput, 3); !errors.Is(err, ErrInputShape) {
		t.Errorf("index out of range: got %v, want ErrInputShape", err)
	}
}

func TestBackwardValidation(t *testing.T) {
	net := NewNetwork(3)
	steps, err := net.Forward(scenarioInput)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}

	if _, err := net.Backward(nil, 2, 0.1); !errors.Is(err, ErrInputShape) {
		t.Errorf("nil snapshot: got %v, want ErrInputShape", err)
	}
	if _, err := net.Backward(steps, 3, 0.1); !errors.Is(err, ErrTargetClass) {
		t.Errorf("target 3: got %v, want ErrTargetClass", err)
	}
	if _, err := net.Backward(steps, 2, 0); !errors.Is(err, ErrLearningRate) {
		t.Errorf("zero rate: got %v, want ErrLearningRate", err)
	}
	if _, err := net.Backward(steps, 2, math.NaN()); !errors.Is(err, ErrLearningRate) {
		t.Errorf("NaN rate: got %v, want ErrLearningRate", err)
	}
}

func TestRepeatedStepsReduceLoss(t *testing.T) {
	net := NewNetwork(8)
	var first, last float64
	for epoch := 0; epoch < 25; epoch++ {
		steps, err := net.Forward(scenarioInput)
		if err != nil {
			t.Fatalf("epoch %d Forward: %v", epoch, err)
		}
		loss, err := net.Loss(steps.Probabilities(), 2)
		if err != nil {
			t.Fatalf("epoch %d Loss: %v", epoch, err)
		}
		if epoch == 0 {
			first = loss
		}
		last = loss
		bp, err := net.Backward(steps, 2, 0.5)
		if err != nil {
			t.Fatalf("epoch %d Backward: %v", epoch, err)
		}
		if err := net.Apply(bp); err != nil {
			t.Fatalf("epoch %d Apply: %v", epoch, err)
		}
	}
	if last >= first {
		t.Errorf("loss did not decrease over training: first %v, last %v", first, last)
	}
}
