package screen

import "errors"

// Step is the next channel operation the renderer performs
type Step int

const (
	// StepDone means the screen is in place
	StepDone Step = iota
	// StepEditText edits a text message in place
	StepEditText
	// StepEditCaption edits the caption of a photo message in place
	StepEditCaption
	// StepEditMedia replaces the media and caption of a message in place
	StepEditMedia
	// StepSend sends a new message and deletes the previous one
	StepSend
)

func (s Step) String() string {
	switch s {
	case StepDone:
		return "done"
	case StepEditText:
		return "edit_text"
	case StepEditCaption:
		return "edit_caption"
	case StepEditMedia:
		return "edit_media"
	default:
		return "send"
	}
}

// Decide picks the first step to turn cur into want. convertText allows
// turning a text message into a photo through a media edit; channels that
// cannot do that must leave it false.
func Decide(cur Displayed, want Screen, convertText bool) Step {
	if cur.Empty() {
		return StepSend
	}

	switch want.Kind() {
	case Text:
		if cur.Kind == Text {
			return StepEditText
		}
		// a photo message can't lose its media
		return StepSend
	case Photo:
		switch cur.Kind {
		case Photo:
			if cur.Image == want.Image {
				return StepEditCaption
			}
			return StepEditMedia
		case Text:
			if convertText {
				return StepEditMedia
			}
		}
	}
	return StepSend
}

// AfterEdit returns the step following an edit attempt with result err
func AfterEdit(err error) Step {
	if err == nil || errors.Is(err, ErrNotModified) {
		return StepDone
	}
	return StepSend
}
