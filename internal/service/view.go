package service

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/sakif/snippet-activity/internal/highlight"
	"github.com/sakif/snippet-activity/internal/model"
)

// Authorizer answers capability questions for the caller of ctx. The answer
// comes from the host platform; this package never computes it.
type Authorizer interface {
	HasCapability(ctx context.Context, capability string, activityID int64) bool
}

// DescriptionRenderer turns a stored description into safe HTML.
type DescriptionRenderer interface {
	Render(desc model.Description) (template.HTML, error)
}

// CodeHighlighter renders code blocks as highlighted HTML. Results come back in
// the order of the input blocks.
type CodeHighlighter interface {
	Highlight(ctx context.Context, blocks []highlight.Block) ([]highlight.Result, error)
}

// ViewParams are the selection parameters of a view request.
type ViewParams struct {
	CategoryID model.OptionalID
	SnipID     model.OptionalID
	// Highlight asks for CodeHTML on every displayed snip.
	Highlight bool
}

// ViewData is everything a renderer needs to draw one page of the activity.
// Exactly one layout is selected.
type ViewData struct {
	ActivityID     int64            `json:"activityId"`
	Layout         model.Layout     `json:"layout"`
	CanAddSnip     bool             `json:"canAddSnip"`
	CanAddCategory bool             `json:"canAddCategory"`
	CategoryID     model.OptionalID `json:"categoryId"`

	// Snips is the list shown by the accordion layout. It is never nil.
	Snips []model.Snip `json:"snips"`
	// SnipsInCategory is the side navigation of the snip_with_nav layout.
	SnipsInCategory []model.Snip `json:"snipsInCategory,omitempty"`
	// Snip is the snip shown by the single-snip layouts.
	Snip *model.Snip `json:"snip,omitempty"`

	Categories []model.Category `json:"categories"`
	Languages  []string         `json:"languages"`
}

// ViewService assembles the data of the main activity page.
type ViewService struct {
	categories  *CategoryService
	snips       *SnipService
	authz       Authorizer
	renderer    DescriptionRenderer
	highlighter CodeHighlighter
	logger      *slog.Logger
}

// ViewOption configures optional collaborators of a ViewService.
type ViewOption func(*ViewService)

// WithDescriptionRenderer fills DescriptionHTML on displayed snips.
func WithDescriptionRenderer(r DescriptionRenderer) ViewOption {
	return func(v *ViewService) { v.renderer = r }
}

// WithHighlighter enables server-side highlighting when ViewParams.Highlight is set.
func WithHighlighter(h CodeHighlighter) ViewOption {
	return func(v *ViewService) { v.highlighter = h }
}

func NewViewService(categories *CategoryService, snips *SnipService, authz Authorizer, logger *slog.Logger, opts ...ViewOption) *ViewService {
	v := &ViewService{
		categories: categories,
		snips:      snips,
		authz:      authz,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Compose selects the page layout from the selection parameters and loads the
// data for it:
//
//	no category, no snip        → latest snips   (accordion_list | no_snip)
//	category, no snip           → category snips (accordion_list | no_snip)
//	category, snip, count > 1   → snip_with_nav
//	category, snip, count <= 1  → full_snip
//
// A snip without a category is shown in the category it is stored in.
// The user's categories are attached in every layout.
func (v *ViewService) Compose(ctx context.Context, sess model.Session, params ViewParams) (*ViewData, error) {
	data := &ViewData{
		ActivityID:     sess.ActivityID,
		CanAddSnip:     v.authz.HasCapability(ctx, model.CapabilityAddSnip, sess.ActivityID),
		CanAddCategory: v.authz.HasCapability(ctx, model.CapabilityAddCategory, sess.ActivityID),
		CategoryID:     params.CategoryID,
		Snips:          []model.Snip{},
	}

	categoryID, hasCategory := params.CategoryID.Get()
	snipID, hasSnip := params.SnipID.Get()

	switch {
	case !hasSnip && !hasCategory:
		snips, err := v.snips.Latest(ctx, sess, LatestOptions{})
		if err != nil {
			return nil, err
		}
		data.Snips = snips
		data.Layout = listLayout(snips)

	case !hasSnip:
		snips, err := v.snips.ListForCategory(ctx, sess, sess.UserID, categoryID)
		if err != nil {
			return nil, err
		}
		data.Snips = snips
		data.Layout = listLayout(snips)

	default:
		snip, err := v.snips.Get(ctx, sess, snipID)
		if err != nil {
			return nil, err
		}
		if !hasCategory {
			categoryID = snip.CategoryID
			data.CategoryID = model.SomeID(categoryID)
		}

		count, err := v.snips.CountForCategory(ctx, sess.UserID, categoryID)
		if err != nil {
			return nil, err
		}
		if count > 1 {
			inCategory, err := v.snips.ListForCategory(ctx, sess, sess.UserID, categoryID)
			if err != nil {
				return nil, err
			}
			data.SnipsInCategory = v.snips.SetActive(params.SnipID, inCategory)
			data.Layout = model.LayoutSnipWithNav
		} else {
			data.Layout = model.LayoutFullSnip
		}
		data.Snip = snip
	}

	categories, err := v.categories.ListForNav(ctx, sess, sess.UserID)
	if err != nil {
		return nil, err
	}
	data.Categories = v.categories.SetActive(data.CategoryID, categories)

	displayed := data.Snips
	if data.Snip != nil {
		displayed = []model.Snip{*data.Snip}
	}
	data.Languages = v.snips.DistinctLanguages(displayed)

	if err := v.decorate(ctx, data, params.Highlight); err != nil {
		return nil, err
	}
	return data, nil
}

// decorate fills the HTML view fields of the displayed snips.
func (v *ViewService) decorate(ctx context.Context, data *ViewData, highlightCode bool) error {
	targets := make([]*model.Snip, 0, len(data.Snips)+1)
	for i := range data.Snips {
		targets = append(targets, &data.Snips[i])
	}
	if data.Snip != nil {
		targets = append(targets, data.Snip)
	}

	if v.renderer != nil {
		for _, s := range targets {
			html, err := v.renderer.Render(s.Description)
			if err != nil {
				// A broken description must not hide the code.
				v.logger.Warn("failed to render description",
					slog.Int64("snipID", s.ID),
					slog.String("error", err.Error()),
				)
				continue
			}
			s.DescriptionHTML = html
		}
	}

	if !highlightCode || v.highlighter == nil || len(targets) == 0 {
		return nil
	}

	blocks := make([]highlight.Block, len(targets))
	for i, s := range targets {
		blocks[i] = highlight.Block{Language: s.Language, Code: s.Code}
	}
	results, err := v.highlighter.Highlight(ctx, blocks)
	if err != nil {
		return fmt.Errorf("highlighting snips: %w", err)
	}
	for i, r := range results {
		targets[i].CodeHTML = r.HTML
	}
	return nil
}

func listLayout(snips []model.Snip) model.Layout {
	if len(snips) > 0 {
		return model.LayoutAccordionList
	}
	return model.LayoutNoSnip
}
