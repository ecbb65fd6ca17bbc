package types

// Event is the wire-friendly form of an emitted state change: a type tag plus
// flat string attributes.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
