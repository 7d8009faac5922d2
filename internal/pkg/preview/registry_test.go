package preview

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumedesk/ResumeDesk/app/models"
)

type fakeViews struct {
	renderErr error
	lastName  string
	lastData  interface{}
}

func (f *fakeViews) Render(out io.Writer, name string, binding interface{}, layout ...string) error {
	if f.renderErr != nil {
		return f.renderErr
	}
	f.lastName = name
	f.lastData = binding
	_, err := fmt.Fprintf(out, "<html>%s</html>", name)
	return err
}

func TestRegistry_RegisterAndRender(t *testing.T) {
	views := &fakeViews{}
	reg := NewRegistry(views)
	require.NoError(t, reg.Register(Template{
		Kind: models.TemplateKindResume,
		Key:  "classic",
		View: "documents/resume_classic",
	}))

	renderer, err := reg.Renderer(models.TemplateKindResume, "classic")
	require.NoError(t, err)

	data := map[string]string{"name": "Asha"}
	html, err := renderer.Render(data)
	require.NoError(t, err)

	assert.Equal(t, "<html>documents/resume_classic</html>", html)
	assert.Equal(t, "documents/resume_classic", views.lastName)
	assert.Equal(t, data, views.lastData)
}

func TestRegistry_UnknownKey(t *testing.T) {
	reg := NewRegistry(&fakeViews{})

	_, err := reg.Renderer(models.TemplateKindResume, "neon")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
	assert.Contains(t, err.Error(), "resume/neon")

	assert.False(t, reg.Has(models.TemplateKindResume, "neon"))
}

func TestRegistry_DuplicateAndInvalidRegistration(t *testing.T) {
	reg := NewRegistry(&fakeViews{})
	tpl := Template{Kind: models.TemplateKindResume, Key: "classic", View: "documents/resume_classic"}

	require.NoError(t, reg.Register(tpl))
	err := reg.Register(tpl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Error(t, reg.Register(Template{Kind: models.TemplateKindResume, Key: "", View: "x"}))
}

func TestRegistry_SameKeyAcrossKinds(t *testing.T) {
	reg := NewRegistry(&fakeViews{})
	require.NoError(t, reg.Register(Template{Kind: models.TemplateKindResume, Key: "classic", View: "documents/resume_classic"}))
	require.NoError(t, reg.Register(Template{Kind: models.TemplateKindCoverLetter, Key: "classic", View: "documents/letter_classic"}))

	assert.True(t, reg.Has(models.TemplateKindResume, "classic"))
	assert.True(t, reg.Has(models.TemplateKindCoverLetter, "classic"))
}

func TestRegisterDefaults(t *testing.T) {
	reg := NewRegistry(&fakeViews{})
	require.NoError(t, RegisterDefaults(reg))

	assert.Equal(t, []string{"classic", "minimal", "modern"}, reg.Keys(models.TemplateKindResume))
	assert.Equal(t, []string{"classic", "formal"}, reg.Keys(models.TemplateKindCoverLetter))
}

func TestRenderDocument_PropagatesRenderError(t *testing.T) {
	views := &fakeViews{renderErr: errors.New("template parse failed")}
	reg := NewRegistry(views)
	require.NoError(t, RegisterDefaults(reg))

	_, err := reg.RenderDocument(models.TemplateKindResume, "classic", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template parse failed")
}
