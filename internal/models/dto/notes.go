package dto

// UpdateNoteRequest lists the mutable note fields. Anything else in the
// payload is dropped by the decoder.
type UpdateNoteRequest struct {
	Title   *string `json:"title"`
	Subject *string `json:"subject"`
	School  *string `json:"school"`
	Batch   *string `json:"batch"`
}
