package common

// Envelope is the failure value handed to the presentation layer. Errors
// never cross that boundary as anything other than data.
type Envelope struct {
	Error string `json:"error"`
}

// NewEnvelope wraps err for the presentation layer. A nil error yields an
// envelope with an empty message.
func NewEnvelope(err error) Envelope {
	if err == nil {
		return Envelope{}
	}
	return Envelope{Error: err.Error()}
}
