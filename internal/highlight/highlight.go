// Package highlight renders code blocks as syntax-highlighted HTML.
//
// Each distinct language of a batch is handled by its own goroutine. The lexer
// of a language is loaded lazily through a Registry, once per process. Every
// highlighted block gets a copy-to-clipboard button rendered from a small
// template; a button that fails to render is reported to the Notifier and the
// block is returned without it.
package highlight

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"html/template"
	"io"
	"log/slog"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/snippet-activity/internal/language"
)

const (
	DefaultStyle     = "github"
	DefaultCacheSize = 512
)

// DefaultClipboard is the copy button appended to every highlighted block.
const DefaultClipboard = `<button type="button" class="snippet-copy" data-language="{{.Language}}" ` +
	`data-clipboard-text="{{.Code}}" title="Copy {{.Label}} to clipboard">Copy</button>`

// Block is one piece of code to highlight.
type Block struct {
	Language string
	Code     string
}

// Result is the rendered form of a Block.
type Result struct {
	Language string
	HTML     template.HTML
	// Highlighted is false when the block was only escaped, because its
	// language could not be loaded or tokenised.
	Highlighted bool
}

// Notifier receives failures that do not stop highlighting.
type Notifier interface {
	Notify(ctx context.Context, err error)
}

// LogNotifier reports failures as warnings.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, err error) {
	n.Logger.WarnContext(ctx, "highlight failure", slog.String("error", err.Error()))
}

// Options configure a Highlighter. Zero values select the defaults.
type Options struct {
	Style     string
	CacheSize int
	// Clipboard is the template of the copy button. It receives a value with
	// Language, Label and Code fields.
	Clipboard *template.Template
	Notifier  Notifier
	Logger    *slog.Logger
}

// Highlighter is safe for concurrent use.
type Highlighter struct {
	registry  *Registry
	formatter *chromahtml.Formatter
	style     *chroma.Style
	clipboard *template.Template
	cache     *lru.Cache[uint64, template.HTML]
	notifier  Notifier
	logger    *slog.Logger
}

type clipboardData struct {
	Language string
	Label    string
	Code     string
}

func New(opts Options) (*Highlighter, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Style == "" {
		opts.Style = DefaultStyle
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: opts.Logger}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = template.Must(template.New("clipboard").Parse(DefaultClipboard))
	}

	style, ok := styles.Registry[opts.Style]
	if !ok {
		opts.Logger.Warn("unknown highlight style, using fallback",
			slog.String("style", opts.Style),
			slog.String("fallback", styles.Fallback.Name),
		)
		style = styles.Fallback
	}

	cache, err := lru.New[uint64, template.HTML](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating highlight cache: %w", err)
	}

	return &Highlighter{
		registry:  NewRegistry(),
		formatter: chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true)),
		style:     style,
		clipboard: opts.Clipboard,
		cache:     cache,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
	}, nil
}

// Highlight renders blocks. Languages are processed concurrently and in no
// particular order, but results line up with the input. The only error
// returned is a cancelled context.
func (h *Highlighter) Highlight(ctx context.Context, blocks []Block) ([]Result, error) {
	results := make([]Result, len(blocks))

	byLanguage := make(map[string][]int)
	for i, b := range blocks {
		key := language.Normalize(b.Language)
		byLanguage[key] = append(byLanguage[key], i)
	}

	g, ctx := errgroup.WithContext(ctx)
	for lang, indices := range byLanguage {
		g.Go(func() error {
			lexer, err := h.registry.Load(lang)
			if err != nil {
				h.notifier.Notify(ctx, err)
			}
			for _, i := range indices {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = h.render(ctx, lang, lexer, blocks[i].Code)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// CSS writes the stylesheet for the configured style.
func (h *Highlighter) CSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

// Languages returns the language keys loaded so far.
func (h *Highlighter) Languages() []string {
	return h.registry.Loaded()
}

func (h *Highlighter) render(ctx context.Context, lang string, lexer chroma.Lexer, code string) Result {
	key := cacheKey(lang, code)
	if cached, ok := h.cache.Get(key); ok {
		return Result{Language: lang, HTML: cached, Highlighted: true}
	}

	body, highlighted := h.tokenise(ctx, lang, lexer, code)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<div class="snippet-block"><pre class="chroma"><code class="language-%s">`, html.EscapeString(lang))
	buf.WriteString(body)
	buf.WriteString(`</code></pre>`)

	buttonOK := false
	if highlighted {
		var button bytes.Buffer
		err := h.clipboard.Execute(&button, clipboardData{Language: lang, Label: language.Label(lang), Code: code})
		if err != nil {
			h.notifier.Notify(ctx, fmt.Errorf("rendering clipboard button for %q: %w", lang, err))
		} else {
			buf.Write(button.Bytes())
			buttonOK = true
		}
	}
	buf.WriteString(`</div>`)

	out := template.HTML(buf.String())
	if highlighted && buttonOK {
		h.cache.Add(key, out)
	}
	return Result{Language: lang, HTML: out, Highlighted: highlighted}
}

// tokenise returns the highlighted markup of code, or the escaped code when
// there is no lexer or tokenising fails.
func (h *Highlighter) tokenise(ctx context.Context, lang string, lexer chroma.Lexer, code string) (string, bool) {
	if lexer == nil {
		return html.EscapeString(code), false
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		h.notifier.Notify(ctx, fmt.Errorf("tokenising %q: %w", lang, err))
		return html.EscapeString(code), false
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		h.notifier.Notify(ctx, fmt.Errorf("formatting %q: %w", lang, err))
		return html.EscapeString(code), false
	}
	return buf.String(), true
}

func cacheKey(lang, code string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(lang)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(code)
	return d.Sum64()
}
