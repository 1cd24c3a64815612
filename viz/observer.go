// Package viz provides visualization sinks for the simulator: console
// printing, channel fan-out for embedding, and an HTTP/websocket server that
// streams stage events and snapshots to a browser dashboard.
package viz

import (
	"fmt"

	"github.com/openfluke/primer/trainer"
)

// Console prints training events to stdout.
type Console struct {
	// Verbose also prints every stage tick, not just loss and epochs.
	Verbose bool
}

func (c *Console) OnStage(event trainer.StageEvent) {
	if event.Stage == trainer.StageLoss {
		fmt.Printf("[LOSS] epoch %d: %.6f\n", event.Epoch, event.Loss)
		return
	}
	if !c.Verbose {
		return
	}
	tag := "[FWD]"
	if event.Mode == "backward" {
		tag = "[BWD]"
	}
	fmt.Printf("%s %s[%d] %s\n", tag, event.Layer, event.Index, event.Stage)
}

func (c *Console) OnEpoch(event trainer.EpochEvent) {
	mode := "instant"
	if event.Animated {
		mode = "animated"
	}
	fmt.Printf("[EPOCH] %d (%s): loss=%.6f probs=%v\n",
		event.Epoch, mode, event.Loss, event.Probabilities)
}

// Multi fans events out to several sinks in order.
type Multi []trainer.Observer

func (m Multi) OnStage(event trainer.StageEvent) {
	for _, obs := range m {
		obs.OnStage(event)
	}
}

func (m Multi) OnEpoch(event trainer.EpochEvent) {
	for _, obs := range m {
		obs.OnEpoch(event)
	}
}

// Channel forwards events to buffered channels for in-process consumers.
// Events are dropped rather than blocking the animation when a consumer
// falls behind.
type Channel struct {
	Stages chan trainer.StageEvent
	Epochs chan trainer.EpochEvent
}

// NewChannel creates a channel sink with the given buffer size per stream.
func NewChannel(bufferSize int) *Channel {
	return &Channel{
		Stages: make(chan trainer.StageEvent, bufferSize),
		Epochs: make(chan trainer.EpochEvent, bufferSize),
	}
}

func (c *Channel) OnStage(event trainer.StageEvent) {
	select {
	case c.Stages <- event:
	default:
	}
}

func (c *Channel) OnEpoch(event trainer.EpochEvent) {
	select {
	case c.Epochs <- event:
	default:
	}
}
