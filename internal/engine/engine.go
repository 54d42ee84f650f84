// Package engine drives quiz sessions: it applies user events to a session,
// scores completed tests and keeps each chat's screen up to date.
package engine

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/example/quizbot/internal/content"
	"github.com/example/quizbot/internal/scoring"
	"github.com/example/quizbot/internal/screen"
	"github.com/example/quizbot/internal/session"
	"github.com/example/quizbot/pkg/models"
)

// ErrTestUnavailable is returned when a slug does not resolve in the catalog
var ErrTestUnavailable = errors.New("test unavailable")

// ResultRecorder stores completed results
type ResultRecorder interface {
	Create(ctx context.Context, result *models.QuizResult) error
}

// Config tunes the engine
type Config struct {
	// BrandingDir holds optional menu.* and full.* images
	BrandingDir string
	// EventTimeout bounds the handling of one event, including the wait for
	// the session and every channel call. Zero means no extra bound.
	EventTimeout time.Duration
}

// Engine is the session controller. Events for one session are handled one at
// a time; events for different sessions run in parallel.
type Engine struct {
	catalog  *content.Catalog
	store    *session.Store
	renderer *screen.Renderer
	recorder ResultRecorder
	log      *zap.Logger
	cfg      Config

	menuImage   string
	resultImage string
}

// New creates an engine. recorder may be nil.
func New(catalog *content.Catalog, store *session.Store, renderer *screen.Renderer, recorder ResultRecorder, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		catalog:     catalog,
		store:       store,
		renderer:    renderer,
		recorder:    recorder,
		log:         logger,
		cfg:         cfg,
		menuImage:   findBrandImage(cfg.BrandingDir, "menu"),
		resultImage: findBrandImage(cfg.BrandingDir, "full"),
	}

	for _, t := range catalog.List() {
		if def, _ := catalog.Get(t.Slug); len(AnswerData(t.Slug, len(def.Questions), 99)) > MaxCallbackData {
			logger.Warn("slug too long for button data", zap.String("slug", t.Slug))
		}
	}
	return e
}

// ListAvailableTests returns the menu entries
func (e *Engine) ListAvailableTests() []models.TestSummary {
	return e.catalog.List()
}

// ChooseTest starts slug from its first question. Unknown slugs leave the
// session untouched and return ErrTestUnavailable.
func (e *Engine) ChooseTest(ctx context.Context, sessionID int64, slug string) (bool, error) {
	test, ok := e.catalog.Get(slug)
	if !ok {
		return false, ErrTestUnavailable
	}

	ctx, cancel := e.eventContext(ctx)
	defer cancel()
	st, release, err := e.store.Acquire(ctx, sessionID)
	if err != nil {
		return false, err
	}
	defer release()

	st.Start(slug)
	e.log.Debug("test chosen", zap.Int64("session", sessionID), zap.String("slug", slug))
	e.render(ctx, sessionID, st, questionScreen(test, 0))
	return true, nil
}

// SubmitAnswer records token for question index of the active test. An index
// other than the session's current one is a stale tap and is ignored.
func (e *Engine) SubmitAnswer(ctx context.Context, sessionID int64, index int, token models.Answer) (bool, error) {
	return e.answer(ctx, sessionID, "", index, token)
}

// ReturnToMenu drops the active test and shows the menu in place
func (e *Engine) ReturnToMenu(ctx context.Context, sessionID int64) (bool, error) {
	ctx, cancel := e.eventContext(ctx)
	defer cancel()
	st, release, err := e.store.Acquire(ctx, sessionID)
	if err != nil {
		return false, err
	}
	defer release()

	st.Clear()
	e.render(ctx, sessionID, st, menuScreen(e.catalog.List(), e.menuImage))
	return true, nil
}

// OpenMenu drops the active test and shows the menu as a fresh message at the
// bottom of the chat, removing the previous screen.
func (e *Engine) OpenMenu(ctx context.Context, sessionID int64) (bool, error) {
	ctx, cancel := e.eventContext(ctx)
	defer cancel()
	st, release, err := e.store.Acquire(ctx, sessionID)
	if err != nil {
		return false, err
	}
	defer release()

	st.Clear()
	disp, err := e.renderer.Replace(ctx, sessionID, st.Screen, menuScreen(e.catalog.List(), e.menuImage))
	if err != nil {
		e.log.Warn("menu not delivered", zap.Int64("session", sessionID), zap.Error(err))
		st.Lagging = true
		return true, nil
	}
	st.Screen = disp
	st.Lagging = false
	return true, nil
}

// HandleCallback routes raw button data. Malformed or stale data is
// acknowledged and dropped.
func (e *Engine) HandleCallback(ctx context.Context, sessionID int64, data string) (bool, error) {
	cb, ok := ParseCallback(data)
	if !ok {
		e.log.Debug("malformed callback dropped", zap.Int64("session", sessionID), zap.String("data", data))
		return false, nil
	}

	switch cb.Kind {
	case ChooseCallback:
		return e.ChooseTest(ctx, sessionID, cb.Slug)
	case MenuCallback:
		return e.ReturnToMenu(ctx, sessionID)
	case AnswerCallback:
		test, ok := e.catalog.Get(cb.Slug)
		if !ok || cb.Question >= len(test.Questions) {
			return false, nil
		}
		options := test.Questions[cb.Question].Options
		if cb.Option >= len(options) {
			return false, nil
		}
		return e.answer(ctx, sessionID, cb.Slug, cb.Question, options[cb.Option].Answer)
	}
	return false, nil
}

func (e *Engine) answer(ctx context.Context, sessionID int64, slug string, index int, token models.Answer) (bool, error) {
	ctx, cancel := e.eventContext(ctx)
	defer cancel()
	st, release, err := e.store.Acquire(ctx, sessionID)
	if err != nil {
		return false, err
	}
	defer release()

	if st.Phase() != session.InProgress || index != st.Index || (slug != "" && slug != st.TestSlug) {
		e.log.Debug("stale answer ignored",
			zap.Int64("session", sessionID),
			zap.Stringer("phase", st.Phase()),
			zap.Int("index", index),
			zap.Int("current", st.Index))
		if st.Lagging && st.Phase() != session.Idle && (slug == "" || slug == st.TestSlug) {
			e.resync(ctx, sessionID, st)
		}
		return false, nil
	}

	test, ok := e.catalog.Get(st.TestSlug)
	if !ok {
		st.Clear()
		return false, ErrTestUnavailable
	}

	if !st.Record(token, len(test.Questions)) {
		e.render(ctx, sessionID, st, questionScreen(test, st.Index))
		return true, nil
	}

	result := scoring.Score(test, st.Trail)
	e.log.Info("test completed", zap.Int64("session", sessionID), zap.String("slug", test.Slug))
	e.record(ctx, sessionID, test, st, result)
	e.render(ctx, sessionID, st, resultScreen(test, result, e.resultImage))
	return true, nil
}

func (e *Engine) record(ctx context.Context, sessionID int64, test *models.TestDefinition, st *session.State, result string) {
	if e.recorder == nil {
		return
	}
	err := e.recorder.Create(ctx, &models.QuizResult{
		UserID:      sessionID,
		TestSlug:    test.Slug,
		TestTitle:   test.Title,
		Outcome:     result,
		Answered:    len(st.Trail),
		CompletedAt: time.Now(),
	})
	if err != nil {
		e.log.Warn("failed to store result", zap.Int64("session", sessionID), zap.Error(err))
	}
}

// resync redraws the current step after an earlier render failed. The
// session itself is left as it is and the result is not stored again.
func (e *Engine) resync(ctx context.Context, sessionID int64, st *session.State) {
	test, ok := e.catalog.Get(st.TestSlug)
	if !ok {
		return
	}
	want := questionScreen(test, st.Index)
	if st.Finished {
		want = resultScreen(test, scoring.Score(test, st.Trail), e.resultImage)
	}
	e.log.Debug("redrawing lagging screen", zap.Int64("session", sessionID), zap.Int("current", st.Index))
	e.render(ctx, sessionID, st, want)
}

// render updates the displayed screen; failures keep the last known screen
// and mark the session as lagging
func (e *Engine) render(ctx context.Context, sessionID int64, st *session.State, want screen.Screen) {
	// In private chats the chat id equals the user id
	disp, err := e.renderer.Render(ctx, sessionID, st.Screen, want)
	if err != nil {
		e.log.Warn("screen not delivered", zap.Int64("session", sessionID), zap.Error(err))
		st.Lagging = true
		return
	}
	st.Screen = disp
	st.Lagging = false
}

func (e *Engine) eventContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.EventTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.EventTimeout)
}
