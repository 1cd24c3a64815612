// Package anim provides the animation loop runner that replays a precomputed
// network snapshot one neuron-stage at a time.
//
// The runner is mode-agnostic: a Config names the layers to traverse, the
// index order per layer (ascending for forward replay, descending for
// backward replay), and the ordered stages per neuron, plus the callbacks to
// invoke as each stage is reached. Between stages the runner suspends on a
// Waiter, which paces execution either by a speed-scaled timer or by
// external advance signals (manual mode). Execution is strictly sequential
// in the calling goroutine; the only concurrency is the cancellable
// suspension itself.
//
// Cancellation is cooperative and silent: when the stop signal fires, Run
// returns false without invoking remaining callbacks or OnComplete, and
// effects already committed through OnStageComplete stay applied.
package anim
