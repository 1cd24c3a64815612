package trainer

import (
	"time"

	"github.com/openfluke/primer/anim"
	"github.com/openfluke/primer/nn"
)

func forwardPlans() []anim.LayerPlan {
	return []anim.LayerPlan{
		{Name: nn.LayerHidden1, Count: nn.Hidden1Size},
		{Name: nn.LayerHidden2, Count: nn.Hidden2Size},
		{Name: nn.LayerOutput, Count: nn.OutputSize},
	}
}

func backwardPlans() []anim.LayerPlan {
	return []anim.LayerPlan{
		{Name: nn.LayerOutput, Count: nn.OutputSize, Reverse: true},
		{Name: nn.LayerHidden2, Count: nn.Hidden2Size, Reverse: true},
		{Name: nn.LayerHidden1, Count: nn.Hidden1Size, Reverse: true},
	}
}

// StepAnimated runs one full animated training step in the calling
// goroutine: a forward replay over every neuron's calculation stages, the
// loss overlay, then a backward replay that commits each neuron's weight
// update as its update stage is shown. It blocks until the step completes or
// is cancelled; cancellation is silent and leaves already-committed updates
// applied.
//
// Only one animated sequence may be in flight; a concurrent call fails with
// ErrAnimationActive.
func (t *Trainer) StepAnimated() error {
	t.mu.Lock()
	if t.isAnimating || t.isTraining {
		t.mu.Unlock()
		return ErrAnimationActive
	}
	t.isAnimating = true
	t.stopCh = make(chan struct{})
	stop := t.stopCh
	gen := t.gen
	obs := t.obs
	input := append([]float64(nil), t.cfg.Input...)
	target := t.cfg.TargetClass
	lr := t.cfg.LearningRate
	epoch := t.epoch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.isAnimating = false
		t.phase = nil
		if t.stopCh == stop {
			t.stopCh = nil
		}
		t.mu.Unlock()
	}()

	t.mu.Lock()
	steps, err := t.net.Forward(input)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	completed := anim.Run(anim.Config{
		Mode:   anim.ModeForward,
		Layers: forwardPlans(),
		Stages: anim.StagesFor(anim.ModeForward),
		Waiter: t.waiter,
		Stop:   stop,
		OnTick: func(layer string, index int, stage anim.Stage) {
			t.setPhase(layer, index)
			obs.OnStage(StageEvent{
				Session: t.session,
				Mode:    anim.ModeForward.String(),
				Layer:   layer,
				Index:   index,
				Stage:   string(stage),
				Epoch:   epoch,
			})
		},
	})
	if !completed {
		return nil
	}

	loss, err := t.net.Loss(steps.Probabilities(), target)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.forward = steps
	t.mu.Unlock()
	obs.OnStage(StageEvent{
		Session: t.session,
		Mode:    anim.ModeForward.String(),
		Stage:   StageLoss,
		Epoch:   epoch,
		Loss:    loss,
	})

	t.mu.Lock()
	bp, err := t.net.Backward(steps, target, lr)
	t.mu.Unlock()
	if err != nil {
		return err
	}

	// The runner is strictly sequential, so commitErr needs no locking of
	// its own; it only crosses between the callbacks below.
	var commitErr error
	completed = anim.Run(anim.Config{
		Mode:   anim.ModeBackward,
		Layers: backwardPlans(),
		Stages: anim.StagesFor(anim.ModeBackward),
		Waiter: t.waiter,
		Stop:   stop,
		ShouldStop: func() bool {
			if commitErr != nil {
				return true
			}
			select {
			case <-stop:
				return true
			default:
				return false
			}
		},
		OnTick: func(layer string, index int, stage anim.Stage) {
			t.setPhase(layer, index)
			obs.OnStage(StageEvent{
				Session: t.session,
				Mode:    anim.ModeBackward.String(),
				Layer:   layer,
				Index:   index,
				Stage:   string(stage),
				Epoch:   epoch,
			})
		},
		OnStageComplete: func(layer string, index int, stage anim.Stage) {
			if stage != anim.StageUpdate {
				return
			}
			t.mu.Lock()
			defer t.mu.Unlock()
			if t.gen != gen {
				// Reset re-seeded the network under this animation; the
				// stale snapshot must not touch the fresh parameters.
				return
			}
			if err := t.net.ApplyNeuron(bp, layer, index); err != nil {
				commitErr = err
			}
		},
	})
	if commitErr != nil {
		return commitErr
	}
	if !completed {
		return nil
	}

	t.mu.Lock()
	t.epoch++
	t.loss = loss
	t.backprop = bp
	epochNow := t.epoch
	t.mu.Unlock()

	obs.OnEpoch(EpochEvent{
		Session:       t.session,
		Epoch:         epochNow,
		Loss:          loss,
		Probabilities: steps.Probabilities(),
		Animated:      true,
	})
	return nil
}

// StepInstant computes one full training step synchronously: forward pass,
// loss, backward pass, parameter commit, with no delays or visualization
// ticks. The resulting parameters are numerically identical to one animated
// step over the same input, target, and learning rate.
func (t *Trainer) StepInstant() error {
	t.mu.Lock()
	if t.isAnimating {
		t.mu.Unlock()
		return ErrAnimationActive
	}

	steps, err := t.net.Forward(t.cfg.Input)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	loss, err := t.net.Loss(steps.Probabilities(), t.cfg.TargetClass)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	bp, err := t.net.Backward(steps, t.cfg.TargetClass, t.cfg.LearningRate)
	if err != nil {
		t.mu.Unlock()
		return err
	}
	if err := t.net.Apply(bp); err != nil {
		t.mu.Unlock()
		return err
	}

	t.epoch++
	t.loss = loss
	t.forward = steps
	t.backprop = bp
	event := EpochEvent{
		Session:       t.session,
		Epoch:         t.epoch,
		Loss:          loss,
		Probabilities: steps.Probabilities(),
	}
	obs := t.obs
	t.mu.Unlock()

	obs.OnEpoch(event)
	return nil
}

// SetContinuous starts or stops continuous training. The loop runs instant
// steps (not animated ones) paced by Config.EpochInterval, so turning it off
// or calling Stop takes effect within one step.
func (t *Trainer) SetContinuous(on bool) error {
	t.mu.Lock()
	if t.isTraining == on {
		t.mu.Unlock()
		return nil
	}
	if on && t.isAnimating {
		t.mu.Unlock()
		return ErrAnimationActive
	}
	t.isTraining = on
	var token uint64
	if on {
		t.trainGen++
		token = t.trainGen
	}
	t.mu.Unlock()

	if on {
		go t.trainLoop(token)
	}
	return nil
}

// ToggleContinuous flips continuous training.
func (t *Trainer) ToggleContinuous() error {
	t.mu.Lock()
	next := !t.isTraining
	t.mu.Unlock()
	return t.SetContinuous(next)
}

func (t *Trainer) trainLoop(token uint64) {
	for {
		t.mu.Lock()
		training := t.isTraining && t.trainGen == token
		interval := t.cfg.EpochInterval
		t.mu.Unlock()
		if !training {
			return
		}

		if err := t.StepInstant(); err != nil {
			// A numeric failure halts training rather than corrupting the
			// parameters epoch after epoch.
			t.mu.Lock()
			if t.trainGen == token {
				t.isTraining = false
			}
			t.mu.Unlock()
			return
		}

		if interval > 0 {
			time.Sleep(interval)
		}
	}
}

func (t *Trainer) setPhase(layer string, index int) {
	t.mu.Lock()
	t.phase = &AnimationPhase{Layer: layer, Index: index}
	t.mu.Unlock()
}
