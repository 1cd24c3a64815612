// Package trainer orchestrates the simulator: it owns the mutable training
// state, composes the numeric model with the animation runner, and is the
// only component that decides which animated or instant operation runs next.
package trainer

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openfluke/primer/anim"
	"github.com/openfluke/primer/nn"
)

var (
	// ErrAnimationActive reports an attempt to start an operation while an
	// animated sequence is in flight.
	ErrAnimationActive = errors.New("animation already in flight")

	// ErrInvalidParameter reports an out-of-range control value. Values are
	// rejected, never clamped.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Config holds the orchestrator's tunables.
type Config struct {
	// Seed initializes the network; Reset reuses it so a session is
	// reproducible.
	Seed int64

	// Input is the feature vector fed to every step.
	Input []float64

	// TargetClass is the class trained toward, in [0, nn.OutputSize).
	TargetClass int

	LearningRate   float64
	AnimationSpeed float64 // multiplier; 0 selects manual pacing

	// StageDuration is the base delay between animation stages before the
	// speed multiplier is applied.
	StageDuration time.Duration

	// EpochInterval paces continuous training between instant steps so
	// toggling it off stays responsive.
	EpochInterval time.Duration

	Observer Observer
}

// DefaultConfig returns the simulator's standard setup: the hand-picked
// candidate vector, target class 2, learning rate 0.1, full-speed animation.
func DefaultConfig() Config {
	return Config{
		Seed:           1,
		Input:          []float64{0.8, 0.6, 0.7},
		TargetClass:    2,
		LearningRate:   0.1,
		AnimationSpeed: 1.0,
		StageDuration:  400 * time.Millisecond,
		EpochInterval:  25 * time.Millisecond,
	}
}

// TrainingState is a read-only copy of the orchestrator's mutable state.
type TrainingState struct {
	SessionID      string    `json:"session_id"`
	Epoch          int       `json:"epoch"`
	Loss           float64   `json:"loss"`
	IsTraining     bool      `json:"is_training"`
	IsAnimating    bool      `json:"is_animating"`
	AnimationSpeed float64   `json:"animation_speed"`
	LearningRate   float64   `json:"learning_rate"`
	TargetClass    int       `json:"target_class"`
	Input          []float64 `json:"input"`
}

// AnimationPhase identifies the neuron currently highlighted by an in-flight
// animation. It is nil outside of flight.
type AnimationPhase struct {
	Layer string `json:"layer"`
	Index int    `json:"index"`
}

// Trainer mediates between the network model and the animation runner. All
// parameter mutation happens inside its own closures; the runner and the
// visualization sink never touch the network directly.
type Trainer struct {
	mu      sync.Mutex
	cfg     Config
	net     *nn.Network
	waiter  *anim.StageWaiter
	obs     Observer
	session string

	epoch       int
	loss        float64
	isTraining  bool
	isAnimating bool
	phase       *AnimationPhase
	stopCh      chan struct{}

	// gen guards late weight commits: Reset bumps it, and an animation
	// started under an older generation refuses to touch the fresh network.
	gen uint64

	// trainGen identifies the current continuous-training activation. Each
	// toggle-on bumps it, so a loop goroutine superseded while asleep exits
	// on its next check instead of running alongside the new one.
	trainGen uint64

	// Last completed snapshots, exposed read-only for rendering.
	forward  *nn.ForwardSteps
	backprop *nn.BackpropSteps
}

// New validates the config and creates an idle trainer.
func New(cfg Config) (*Trainer, error) {
	if len(cfg.Input) != nn.InputSize {
		return nil, fmt.Errorf("%w: input length %d", ErrInvalidParameter, len(cfg.Input))
	}
	if cfg.TargetClass < 0 || cfg.TargetClass >= nn.OutputSize {
		return nil, fmt.Errorf("%w: target class %d", ErrInvalidParameter, cfg.TargetClass)
	}
	if !isFinite(cfg.LearningRate) || cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("%w: learning rate %v", ErrInvalidParameter, cfg.LearningRate)
	}
	if !isFinite(cfg.AnimationSpeed) || cfg.AnimationSpeed < 0 {
		return nil, fmt.Errorf("%w: animation speed %v", ErrInvalidParameter, cfg.AnimationSpeed)
	}
	if cfg.StageDuration <= 0 {
		cfg.StageDuration = DefaultConfig().StageDuration
	}
	if cfg.EpochInterval < 0 {
		cfg.EpochInterval = 0
	}

	obs := cfg.Observer
	if obs == nil {
		obs = noopObserver{}
	}

	return &Trainer{
		cfg:     cfg,
		net:     nn.NewNetwork(cfg.Seed),
		waiter:  anim.NewStageWaiter(cfg.StageDuration, cfg.AnimationSpeed),
		obs:     obs,
		session: uuid.NewString(),
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// State returns a copy of the current training state.
func (t *Trainer) State() TrainingState {
	t.mu.Lock()
	defer t.mu.Unlock()
	input := make([]float64, len(t.cfg.Input))
	copy(input, t.cfg.Input)
	return TrainingState{
		SessionID:      t.session,
		Epoch:          t.epoch,
		Loss:           t.loss,
		IsTraining:     t.isTraining,
		IsAnimating:    t.isAnimating,
		AnimationSpeed: t.cfg.AnimationSpeed,
		LearningRate:   t.cfg.LearningRate,
		TargetClass:    t.cfg.TargetClass,
		Input:          input,
	}
}

// Phase returns a copy of the current animation cursor, or nil when no
// animation is in flight.
func (t *Trainer) Phase() *AnimationPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.phase == nil {
		return nil
	}
	p := *t.phase
	return &p
}

// ForwardSnapshot returns the last completed forward snapshot, or nil.
func (t *Trainer) ForwardSnapshot() *nn.ForwardSteps {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.forward
}

// BackpropSnapshot returns the last completed backward snapshot, or nil.
func (t *Trainer) BackpropSnapshot() *nn.BackpropSteps {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.backprop
}

// Summary returns the network blueprint stamped with the session ID.
func (t *Trainer) Summary() nn.Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.net.ExtractSummary(t.session)
}

// Weights returns a copy of the named layer's current weight matrix.
func (t *Trainer) Weights(layer string) [][]float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.net.LayerWeights(layer)
}

// Biases returns a copy of the named layer's current bias vector.
func (t *Trainer) Biases(layer string) []float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.net.LayerBiases(layer)
}

// SetObserver replaces the visualization sink. A nil observer disables
// event delivery. An in-flight animation keeps the sink it started with.
func (t *Trainer) SetObserver(obs Observer) {
	if obs == nil {
		obs = noopObserver{}
	}
	t.mu.Lock()
	t.obs = obs
	t.mu.Unlock()
}

// SetAnimationSpeed sets the speed multiplier. Zero switches the animation
// to manual pacing, where each stage waits for Advance.
func (t *Trainer) SetAnimationSpeed(speed float64) error {
	if !isFinite(speed) || speed < 0 {
		return fmt.Errorf("%w: animation speed %v", ErrInvalidParameter, speed)
	}
	t.mu.Lock()
	t.cfg.AnimationSpeed = speed
	t.mu.Unlock()
	t.waiter.SetSpeed(speed)
	return nil
}

// SetManual forces or releases manual pacing independent of the speed value.
func (t *Trainer) SetManual(manual bool) {
	t.waiter.SetManual(manual)
}

// Advance satisfies one pending manual-mode stage wait. With no animation
// suspended it is a no-op.
func (t *Trainer) Advance() {
	t.waiter.Advance()
}

// SetLearningRate sets the learning rate used by subsequent steps.
func (t *Trainer) SetLearningRate(rate float64) error {
	if !isFinite(rate) || rate <= 0 {
		return fmt.Errorf("%w: learning rate %v", ErrInvalidParameter, rate)
	}
	t.mu.Lock()
	t.cfg.LearningRate = rate
	t.mu.Unlock()
	return nil
}

// SetTarget sets the class trained toward.
func (t *Trainer) SetTarget(class int) error {
	if class < 0 || class >= nn.OutputSize {
		return fmt.Errorf("%w: target class %d", ErrInvalidParameter, class)
	}
	t.mu.Lock()
	t.cfg.TargetClass = class
	t.mu.Unlock()
	return nil
}

// SetInput sets the feature vector fed to subsequent steps.
func (t *Trainer) SetInput(input []float64) error {
	if len(input) != nn.InputSize {
		return fmt.Errorf("%w: input length %d", ErrInvalidParameter, len(input))
	}
	t.mu.Lock()
	t.cfg.Input = append([]float64(nil), input...)
	t.mu.Unlock()
	return nil
}

// Stop cooperatively cancels any in-flight animation and turns continuous
// training off. The terminal state is always idle: IsAnimating false and a
// nil phase.
func (t *Trainer) Stop() {
	t.mu.Lock()
	t.isTraining = false
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
	t.mu.Unlock()
}

// Reset cancels any in-flight work and restores the initial state: the
// configured seed's fresh parameters, epoch 0, zero loss, no phase.
func (t *Trainer) Reset() {
	t.Stop()
	t.mu.Lock()
	t.gen++
	t.net.Reset(t.cfg.Seed)
	t.epoch = 0
	t.loss = 0
	t.phase = nil
	t.forward = nil
	t.backprop = nil
	t.mu.Unlock()
}
