package play

// loadedMsg is sent when the controller's Load returns.
type loadedMsg struct {
	Err error
}

// hintMsg carries the result of a hint request.
type hintMsg struct {
	QuestionID string
	Text       string
	Err        error
}
