package service

import (
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"testing"

	"github.com/sakif/snippet-activity/internal/apperror"
	"github.com/sakif/snippet-activity/internal/highlight"
	"github.com/sakif/snippet-activity/internal/model"
)

type fakeRenderer struct{}

func (fakeRenderer) Render(d model.Description) (template.HTML, error) {
	if d.Text == "broken" {
		return "", errors.New("cannot render")
	}
	return template.HTML("<p>" + template.HTMLEscapeString(d.Text) + "</p>"), nil
}

type fakeHighlighter struct {
	calls int
}

func (f *fakeHighlighter) Highlight(_ context.Context, blocks []highlight.Block) ([]highlight.Result, error) {
	f.calls++
	out := make([]highlight.Result, len(blocks))
	for i, b := range blocks {
		out[i] = highlight.Result{Language: b.Language, HTML: template.HTML("<code>" + b.Language + "</code>")}
	}
	return out, nil
}

func newViewService(env *testEnv, caps capSet, opts ...ViewOption) *ViewService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewViewService(env.categories, env.snips, caps, logger, opts...)
}

func TestCompose_EmptyState(t *testing.T) {
	env := newTestEnv(t)
	view := newViewService(env, capSet{})

	data, err := view.Compose(context.Background(), env.sess, ViewParams{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if data.Layout != model.LayoutNoSnip {
		t.Errorf("Layout = %q, want %q", data.Layout, model.LayoutNoSnip)
	}
	if data.Snips == nil || len(data.Snips) != 0 {
		t.Errorf("Snips = %#v, want empty non-nil slice", data.Snips)
	}
	if data.Snip != nil || data.SnipsInCategory != nil {
		t.Errorf("single-snip fields set in list layout: %+v", data)
	}
}

func TestCompose_RecentList(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "c")
	for range 12 {
		env.snip(t, cat, "s", "go")
	}
	view := newViewService(env, capSet{model.CapabilityAddSnip: true})

	data, err := view.Compose(context.Background(), env.sess, ViewParams{})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if data.Layout != model.LayoutAccordionList {
		t.Errorf("Layout = %q, want %q", data.Layout, model.LayoutAccordionList)
	}
	if len(data.Snips) != DefaultLatestMax {
		t.Errorf("len(Snips) = %d, want %d", len(data.Snips), DefaultLatestMax)
	}
	if !data.CanAddSnip || data.CanAddCategory {
		t.Errorf("capabilities = %v/%v, want true/false", data.CanAddSnip, data.CanAddCategory)
	}
	for _, c := range data.Categories {
		if c.Active {
			t.Errorf("category %d active with no selection", c.ID)
		}
	}
}

func TestCompose_CategoryList(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "c")
	empty := env.category(t, "empty")
	env.snip(t, cat, "a", "PHP")
	env.snip(t, cat, "b", "php")
	view := newViewService(env, capSet{})

	data, err := view.Compose(context.Background(), env.sess, ViewParams{CategoryID: model.SomeID(cat)})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if data.Layout != model.LayoutAccordionList || len(data.Snips) != 2 {
		t.Errorf("Layout = %q with %d snips, want accordion_list with 2", data.Layout, len(data.Snips))
	}
	if len(data.Languages) != 1 || data.Languages[0] != "php" {
		t.Errorf("Languages = %v, want [php]", data.Languages)
	}
	for _, c := range data.Categories {
		if c.Active != (c.ID == cat) {
			t.Errorf("category %d Active = %v", c.ID, c.Active)
		}
	}

	data, err = view.Compose(context.Background(), env.sess, ViewParams{CategoryID: model.SomeID(empty)})
	if err != nil {
		t.Fatalf("Compose(empty) error = %v", err)
	}
	if data.Layout != model.LayoutNoSnip {
		t.Errorf("empty category Layout = %q, want %q", data.Layout, model.LayoutNoSnip)
	}
}

func TestCompose_SnipWithNav(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "c")
	first := env.snip(t, cat, "first", "go")
	second := env.snip(t, cat, "second", "go")
	view := newViewService(env, capSet{})

	data, err := view.Compose(context.Background(), env.sess, ViewParams{
		CategoryID: model.SomeID(cat),
		SnipID:     model.SomeID(first),
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if data.Layout != model.LayoutSnipWithNav {
		t.Fatalf("Layout = %q, want %q", data.Layout, model.LayoutSnipWithNav)
	}
	if len(data.SnipsInCategory) != 2 {
		t.Fatalf("len(SnipsInCategory) = %d, want 2", len(data.SnipsInCategory))
	}
	for _, s := range data.SnipsInCategory {
		if s.Active != (s.ID == first) {
			t.Errorf("snip %d Active = %v (first=%d, second=%d)", s.ID, s.Active, first, second)
		}
	}
	if data.Snip == nil || data.Snip.ID != first || data.Snip.DisplayLanguage != "Go" {
		t.Errorf("Snip = %+v, want snip %d labelled Go", data.Snip, first)
	}
}

func TestCompose_FullSnip(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "c")
	only := env.snip(t, cat, "only", "go")
	view := newViewService(env, capSet{})

	data, err := view.Compose(context.Background(), env.sess, ViewParams{
		CategoryID: model.SomeID(cat),
		SnipID:     model.SomeID(only),
	})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if data.Layout != model.LayoutFullSnip {
		t.Errorf("Layout = %q, want %q", data.Layout, model.LayoutFullSnip)
	}
	if data.SnipsInCategory != nil {
		t.Errorf("SnipsInCategory = %v, want nil", data.SnipsInCategory)
	}
	if data.Snip == nil || data.Snip.ID != only {
		t.Errorf("Snip = %+v, want %d", data.Snip, only)
	}
}

func TestCompose_SnipWithoutCategory(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "c")
	id := env.snip(t, cat, "only", "go")
	view := newViewService(env, capSet{})

	data, err := view.Compose(context.Background(), env.sess, ViewParams{SnipID: model.SomeID(id)})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if data.Layout != model.LayoutFullSnip || !data.CategoryID.Is(cat) {
		t.Errorf("Layout = %q CategoryID = %v, want full_snip in %d", data.Layout, data.CategoryID, cat)
	}
}

func TestCompose_MissingSnip(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "c")
	view := newViewService(env, capSet{})

	_, err := view.Compose(context.Background(), env.sess, ViewParams{
		CategoryID: model.SomeID(cat),
		SnipID:     model.SomeID(404),
	})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCompose_RendersAndHighlights(t *testing.T) {
	env := newTestEnv(t)
	cat := env.category(t, "c")
	for _, desc := range []string{"ok", "broken"} {
		if _, err := env.snips.Create(context.Background(), env.sess, CreateSnipInput{
			Category:    ExistingCategory{ID: cat},
			Name:        desc,
			Description: model.Description{Text: desc, Format: model.FormatPlain},
			Language:    "go",
		}); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	hl := &fakeHighlighter{}
	view := newViewService(env, capSet{}, WithDescriptionRenderer(fakeRenderer{}), WithHighlighter(hl))

	data, err := view.Compose(context.Background(), env.sess, ViewParams{CategoryID: model.SomeID(cat)})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if hl.calls != 0 {
		t.Errorf("highlighter called %d times without Highlight", hl.calls)
	}

	data, err = view.Compose(context.Background(), env.sess, ViewParams{CategoryID: model.SomeID(cat), Highlight: true})
	if err != nil {
		t.Fatalf("Compose(highlight) error = %v", err)
	}
	for _, s := range data.Snips {
		if s.CodeHTML != "<code>go</code>" {
			t.Errorf("snip %q CodeHTML = %q", s.Name, s.CodeHTML)
		}
		switch s.Name {
		case "ok":
			if s.DescriptionHTML != "<p>ok</p>" {
				t.Errorf("DescriptionHTML = %q, want <p>ok</p>", s.DescriptionHTML)
			}
		case "broken":
			if s.DescriptionHTML != "" {
				t.Errorf("broken DescriptionHTML = %q, want empty", s.DescriptionHTML)
			}
		}
	}
}
