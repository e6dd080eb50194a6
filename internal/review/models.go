package review

// ModelOption is one entry of the model selector.
type ModelOption struct {
	Name string `json:"name" yaml:"name"` // display name
	ID   string `json:"id" yaml:"id"`     // identifier sent to the endpoint
}

// modelRegistry is ordered; the first entry is the default selection.
var modelRegistry = []ModelOption{
	{Name: "Mistral 7B", ID: "mistralai/mistral-7b-instruct"},
	{Name: "LLaMA 3 8B", ID: "meta-llama/llama-3-8b-instruct"},
	{Name: "Claude 3 Haiku", ID: "anthropic/claude-3-haiku"},
}

// Models returns the selectable models in display order.
func Models() []ModelOption {
	out := make([]ModelOption, len(modelRegistry))
	copy(out, modelRegistry)
	return out
}

// DefaultModel returns the identifier selected when nothing else is chosen.
func DefaultModel() string {
	return modelRegistry[0].ID
}

// LookupModel returns the registry entry for id.
func LookupModel(id string) (ModelOption, bool) {
	for _, m := range modelRegistry {
		if m.ID == id {
			return m, true
		}
	}
	return ModelOption{}, false
}

// modelIndex returns the position of id in the registry, or -1.
func modelIndex(id string) int {
	for i, m := range modelRegistry {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// NextModel returns the identifier after id, wrapping around.
func NextModel(id string) string {
	i := modelIndex(id)
	return modelRegistry[(i+1)%len(modelRegistry)].ID
}

// PrevModel returns the identifier before id, wrapping around.
func PrevModel(id string) string {
	i := modelIndex(id)
	if i <= 0 {
		return modelRegistry[len(modelRegistry)-1].ID
	}
	return modelRegistry[i-1].ID
}
