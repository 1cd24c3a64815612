package nn

// Summary is the structural blueprint of the network, extracted for the
// visualization boundary. All fields are read-only metadata; no parameter
// values are included.
type Summary struct {
	ID          string         `json:"id"`
	InputSize   int            `json:"input_size"`
	TotalParams int            `json:"total_parameters"`
	Layers      []LayerSummary `json:"layers"`
}

// LayerSummary describes one layer of the fixed topology.
type LayerSummary struct {
	Name       string `json:"name"`
	Neurons    int    `json:"neurons"`
	Inputs     int    `json:"inputs"`
	Activation string `json:"activation"`
	Parameters int    `json:"parameters"`
}

// ExtractSummary builds the blueprint for this network, stamped with the
// given identifier.
func (n *Network) ExtractSummary(id string) Summary {
	summary := Summary{
		ID:        id,
		InputSize: InputSize,
	}

	activations := map[string]string{
		LayerHidden1: "sigmoid",
		LayerHidden2: "sigmoid",
		LayerOutput:  "softmax",
	}

	for _, name := range LayerNames() {
		lp := n.params(name)
		neurons := len(lp.weights)
		inputs := len(lp.weights[0])
		params := neurons*inputs + neurons

		summary.Layers = append(summary.Layers, LayerSummary{
			Name:       name,
			Neurons:    neurons,
			Inputs:     inputs,
			Activation: activations[name],
			Parameters: params,
		})
		summary.TotalParams += params
	}

	return summary
}
