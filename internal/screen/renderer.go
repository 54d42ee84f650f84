package screen

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Renderer materializes screens on a Channel
type Renderer struct {
	ch  Channel
	log *zap.Logger
	// ConvertText lets a text message be turned into a photo by a media edit
	ConvertText bool
}

// NewRenderer creates a renderer on ch
func NewRenderer(ch Channel, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{ch: ch, log: logger}
}

// Render updates the chat so that want is its single live screen and returns
// the new displayed record. Edit failures are swallowed and fall back to
// sending a fresh message. When the fallback send fails, or ctx ends, cur is
// returned unchanged together with the error; callers keep their previous
// record in that case.
func (r *Renderer) Render(ctx context.Context, chatID int64, cur Displayed, want Screen) (Displayed, error) {
	if err := ctx.Err(); err != nil {
		return cur, err
	}

	step := Decide(cur, want, r.ConvertText)
	if step != StepSend {
		err := r.edit(ctx, step, chatID, cur.MessageID, want)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cur, ctxErr
		}
		if AfterEdit(err) == StepDone {
			return Displayed{MessageID: cur.MessageID, Kind: want.Kind(), Image: want.Image}, nil
		}
		r.log.Debug("edit failed, resending",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", cur.MessageID),
			zap.Stringer("step", step),
			zap.Error(err))
	}

	return r.Replace(ctx, chatID, cur, want)
}

// Replace sends want as a new message and then deletes the old one,
// skipping any in-place edit.
func (r *Renderer) Replace(ctx context.Context, chatID int64, cur Displayed, want Screen) (Displayed, error) {
	var (
		id  int
		err error
	)
	if want.Kind() == Photo {
		id, err = r.ch.SendPhoto(ctx, chatID, want.Image, want.Text, want.Buttons)
	} else {
		id, err = r.ch.SendText(ctx, chatID, want.Text, want.Buttons)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return cur, ctxErr
	}
	if err != nil {
		r.log.Warn("send failed, screen left as is",
			zap.Int64("chat_id", chatID),
			zap.Stringer("kind", want.Kind()),
			zap.Error(err))
		return cur, fmt.Errorf("%w: %v", ErrUndelivered, err)
	}

	if !cur.Empty() && cur.MessageID != id {
		if err := r.ch.Delete(ctx, chatID, cur.MessageID); err != nil {
			r.log.Debug("delete of previous screen failed",
				zap.Int64("chat_id", chatID),
				zap.Int("message_id", cur.MessageID),
				zap.Error(err))
		}
	}

	return Displayed{MessageID: id, Kind: want.Kind(), Image: want.Image}, nil
}

func (r *Renderer) edit(ctx context.Context, step Step, chatID int64, messageID int, want Screen) error {
	switch step {
	case StepEditText:
		return r.ch.EditText(ctx, chatID, messageID, want.Text, want.Buttons)
	case StepEditCaption:
		return r.ch.EditCaption(ctx, chatID, messageID, want.Text, want.Buttons)
	case StepEditMedia:
		return r.ch.EditMedia(ctx, chatID, messageID, want.Image, want.Text, want.Buttons)
	default:
		return fmt.Errorf("unexpected edit step %s", step)
	}
}
