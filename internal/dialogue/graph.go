package dialogue

// Choice is a selectable branch offered by a Graph.
type Choice struct {
	Text string `json:"text"`
}

// Graph is a compiled branching narrative that can be stepped one chunk at a time.
type Graph interface {
	// CanContinue reports whether another chunk of narration is available.
	CanContinue() bool
	// Continue returns the next chunk of narration.
	Continue() string
	// CurrentTags returns the tags attached to the chunk last returned by Continue.
	CurrentTags() []string
	// CurrentChoices returns the branches available at the current point.
	CurrentChoices() []Choice
	// ChooseChoiceIndex follows the branch at index i of CurrentChoices.
	ChooseChoiceIndex(i int) error
}
