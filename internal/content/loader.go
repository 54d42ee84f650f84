// Package content loads test definitions from the content repository.
//
// Every test lives in its own directory:
//
//	<root>/<slug>/questions.json   (or questions.xlsx)
//	<root>/<slug>/results.json
//
// A directory that fails to parse or validate is skipped; it never prevents
// the other tests from loading.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/quizbot/pkg/models"
)

const (
	questionsJSON = "questions.json"
	questionsXLSX = "questions.xlsx"
	resultsJSON   = "results.json"

	// maxParallelLoads bounds how many test directories are parsed at once
	maxParallelLoads = 4

	// maxCallbackData is the Telegram limit for button data, in bytes.
	// Buttons carry "start:<slug>" and "ans:<slug>:<question>:<option>".
	maxCallbackData = 64
)

var errMissingFile = errors.New("missing file")

// Skipped describes a test directory that was not loaded
type Skipped struct {
	Slug string
	Err  error
}

// Loader reads test definitions from a directory tree
type Loader struct {
	fsys fs.FS
	// root is the OS path of fsys, used to build image paths for the channel
	root string
	log  *zap.Logger
}

// NewLoader creates a loader over fsys. root is prefixed to image paths so
// they can be opened by the channel client; it may be empty.
func NewLoader(fsys fs.FS, root string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{fsys: fsys, root: root, log: logger}
}

// LoadDir loads every test under dir
func LoadDir(dir string, logger *zap.Logger) (*Catalog, []Skipped) {
	return NewLoader(os.DirFS(dir), dir, logger).LoadAll()
}

// LoadAll loads every test directory. Tests that fail are reported in the
// returned slice and logged; they are absent from the catalog.
func (l *Loader) LoadAll() (*Catalog, []Skipped) {
	entries, err := fs.ReadDir(l.fsys, ".")
	if err != nil {
		l.log.Warn("tests dir not readable", zap.String("root", l.root), zap.Error(err))
		return NewCatalog(), nil
	}

	var (
		mu      sync.Mutex
		defs    []*models.TestDefinition
		skipped []Skipped
		g       errgroup.Group
	)
	g.SetLimit(maxParallelLoads)

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		slug := e.Name()
		g.Go(func() error {
			def, err := l.Load(slug)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				l.log.Warn("skip test", zap.String("slug", slug), zap.Error(err))
				skipped = append(skipped, Skipped{Slug: slug, Err: err})
				return nil
			}
			defs = append(defs, def)
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Slug < skipped[j].Slug })

	catalog := NewCatalog(defs...)
	l.log.Info("tests loaded",
		zap.Int("loaded", catalog.Len()),
		zap.Int("skipped", len(skipped)),
		zap.String("root", l.root))
	return catalog, skipped
}

// Load parses and validates a single test directory
func (l *Loader) Load(slug string) (*models.TestDefinition, error) {
	def, err := l.readQuestions(slug)
	if err != nil {
		return nil, err
	}

	rdata, err := fs.ReadFile(l.fsys, path.Join(slug, resultsJSON))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errMissingFile, resultsJSON)
		}
		return nil, err
	}
	def.Results, err = parseResults(def.Strategy, rdata)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resultsJSON, err)
	}

	if err := l.validate(def); err != nil {
		return nil, err
	}
	def.Dir = l.osPath(slug)
	for i := range def.Questions {
		if img := def.Questions[i].Image; img != "" && !isURL(img) {
			def.Questions[i].Image = l.osPath(path.Join(slug, img))
		}
	}
	return def, nil
}

func (l *Loader) readQuestions(slug string) (*models.TestDefinition, error) {
	data, err := fs.ReadFile(l.fsys, path.Join(slug, questionsJSON))
	if err == nil {
		def, err := parseQuestionsJSON(slug, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", questionsJSON, err)
		}
		return def, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	f, err := l.fsys.Open(path.Join(slug, questionsXLSX))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errMissingFile, questionsJSON)
		}
		return nil, err
	}
	defer f.Close()

	def, err := parseQuestionsXLSX(slug, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", questionsXLSX, err)
	}
	return def, nil
}

func (l *Loader) validate(def *models.TestDefinition) error {
	if len(def.Questions) == 0 {
		return errors.New("no questions")
	}
	if err := validateSlug(def); err != nil {
		return err
	}
	for i, q := range def.Questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: empty text", i+1)
		}
		if len(q.Options) == 0 {
			return fmt.Errorf("question %d: no options", i+1)
		}
		if def.Strategy == models.AxisTally && len(q.Options) != 2 {
			return fmt.Errorf("question %d: want 2 options, got %d", i+1, len(q.Options))
		}
		for j, o := range q.Options {
			if def.Strategy == models.AxisTally && o.Answer.Kind != models.TraitKind {
				return fmt.Errorf("question %d option %d: trait required", i+1, j+1)
			}
		}
		if q.Image != "" && !isURL(q.Image) {
			if _, err := fs.Stat(l.fsys, path.Join(def.Slug, q.Image)); err != nil {
				return fmt.Errorf("question %d: image: %w", i+1, err)
			}
		}
	}
	return nil
}

// validateSlug rejects slugs that cannot be carried in button data
func validateSlug(def *models.TestDefinition) error {
	if strings.Contains(def.Slug, ":") {
		return fmt.Errorf("slug %q: contains ':'", def.Slug)
	}
	maxOptions := 0
	for _, q := range def.Questions {
		maxOptions = max(maxOptions, len(q.Options))
	}
	longest := fmt.Sprintf("ans:%s:%d:%d", def.Slug, len(def.Questions)-1, maxOptions-1)
	if len(longest) > maxCallbackData {
		return fmt.Errorf("slug %q: button data is %d bytes, limit %d", def.Slug, len(longest), maxCallbackData)
	}
	return nil
}

func (l *Loader) osPath(rel string) string {
	if l.root == "" {
		return filepath.FromSlash(rel)
	}
	return filepath.Join(l.root, filepath.FromSlash(rel))
}

func isURL(ref string) bool {
	return strings.Contains(ref, "://")
}
