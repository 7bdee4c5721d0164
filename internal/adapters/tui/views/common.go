package views

import "stylebook/internal/domain"

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// SetError shows err, or clears the message when err is nil
func (s *ViewState) SetError(err error) {
	if err == nil {
		s.ClearMessage()
		return
	}
	s.SetMessage(err.Error(), true)
}

// listHeight is the number of rows left for a list once the title, the
// message and the help line are drawn
func (s *ViewState) listHeight() int {
	const chrome = 9
	if s.Height <= chrome {
		return 10
	}
	return s.Height - chrome
}

// View switching messages

type SwitchToProfilesMsg struct{}

type SwitchToCatalogMsg struct {
	Profile *domain.Profile
}

// SwitchToFormMsg opens the profile form; a nil Profile adds a new one
type SwitchToFormMsg struct {
	Profile *domain.Profile
}

type SwitchToHelpMsg struct{}

// FormDoneMsg is sent after the profile form saved successfully
type FormDoneMsg struct {
	Message string
}
