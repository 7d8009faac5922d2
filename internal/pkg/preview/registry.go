package preview

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/resumedesk/ResumeDesk/app/models"
)

// ErrUnknownTemplate is returned when a document references a template key
// that no renderer was registered for. The preview reports it instead of
// falling back to a blank page.
var ErrUnknownTemplate = errors.New("unknown document template")

// Views is the slice of the fiber template engine the registry needs. The
// html engine from gofiber/template satisfies it.
type Views interface {
	Render(out io.Writer, name string, binding interface{}, layout ...string) error
}

// Template binds a catalog key to the view file that draws it.
type Template struct {
	Kind string // models.TemplateKindResume or models.TemplateKindCoverLetter
	Key  string
	View string // view name under views/, e.g. "documents/resume_classic"
}

// Renderer produces display HTML for one template design.
type Renderer interface {
	Render(data interface{}) (string, error)
}

type viewRenderer struct {
	views Views
	view  string
}

func (r viewRenderer) Render(data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := r.views.Render(&buf, r.view, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Registry maps (kind, key) pairs to renderers. Keys are registered
// explicitly at startup; resolving an unregistered key is an error.
type Registry struct {
	mu        sync.RWMutex
	views     Views
	templates map[string]Template
}

// NewRegistry creates an empty registry rendering through the given views
// engine.
func NewRegistry(views Views) *Registry {
	return &Registry{
		views:     views,
		templates: make(map[string]Template),
	}
}

func registryKey(kind, key string) string {
	return kind + "/" + key
}

// Register adds one template. Re-registering a (kind, key) pair is an error;
// the template set is fixed at startup.
func (r *Registry) Register(t Template) error {
	if t.Kind == "" || t.Key == "" || t.View == "" {
		return errors.New("template kind, key and view are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := registryKey(t.Kind, t.Key)
	if _, exists := r.templates[k]; exists {
		return fmt.Errorf("template %s already registered", k)
	}
	r.templates[k] = t
	return nil
}

// Has reports whether a (kind, key) pair is registered. CRUD validation uses
// this so a document can never be saved pointing at a key the preview cannot
// draw.
func (r *Registry) Has(kind, key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.templates[registryKey(kind, key)]
	return ok
}

// Renderer resolves a (kind, key) pair to its renderer.
func (r *Registry) Renderer(kind, key string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.templates[registryKey(kind, key)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownTemplate, kind, key)
	}
	return viewRenderer{views: r.views, view: t.View}, nil
}

// Keys returns the registered keys for one kind, sorted.
func (r *Registry) Keys(kind string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var keys []string
	for _, t := range r.templates {
		if t.Kind == kind {
			keys = append(keys, t.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

// RenderDocument resolves and renders in one step.
func (r *Registry) RenderDocument(kind, key string, data interface{}) (string, error) {
	renderer, err := r.Renderer(kind, key)
	if err != nil {
		return "", err
	}
	return renderer.Render(data)
}

// RegisterDefaults installs the template set the app ships with. The catalog
// rows in document_templates carry the marketing metadata for these keys.
func RegisterDefaults(r *Registry) error {
	defaults := []Template{
		{Kind: models.TemplateKindResume, Key: "classic", View: "documents/resume_classic"},
		{Kind: models.TemplateKindResume, Key: "modern", View: "documents/resume_modern"},
		{Kind: models.TemplateKindResume, Key: "minimal", View: "documents/resume_minimal"},
		{Kind: models.TemplateKindCoverLetter, Key: "classic", View: "documents/letter_classic"},
		{Kind: models.TemplateKindCoverLetter, Key: "formal", View: "documents/letter_formal"},
	}
	for _, t := range defaults {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
