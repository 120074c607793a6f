package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/sakif/snippet-activity/internal/model"
	"github.com/sakif/snippet-activity/internal/service"
)

// sessionFlags are the flags naming whose view of which activity to use.
type sessionFlags struct {
	activityID int64
	userID     int64
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().Int64VarP(&f.activityID, "activity", "a", 0, "activity id")
	cmd.Flags().Int64VarP(&f.userID, "user", "u", 0, "user id")
	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("user")
}

func (f *sessionFlags) session(cmd *cobra.Command, a *app) (model.Session, error) {
	if err := a.open(); err != nil {
		return model.Session{}, err
	}
	if _, err := a.activities.Get(cmd.Context(), f.activityID); err != nil {
		return model.Session{}, err
	}
	return model.Session{UserID: f.userID, ActivityID: f.activityID}, nil
}

func newSnipsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snips",
		Short: "List snips",
	}
	cmd.AddCommand(newSnipsLatestCommand(a))
	return cmd
}

func newSnipsLatestCommand(a *app) *cobra.Command {
	var (
		flags sessionFlags
		limit int
		style string
	)

	cmd := &cobra.Command{
		Use:   "latest",
		Short: "Show a user's most recent snips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := flags.session(cmd, a)
			if err != nil {
				return err
			}
			snips, err := a.snips.Latest(cmd.Context(), sess, service.LatestOptions{Max: limit})
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), style, latestMarkdown(snips))
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&limit, "max", "n", service.DefaultLatestMax, "number of snips")
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style (auto, dark, light, notty)")
	return cmd
}

func newSnipCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snip",
		Short: "Inspect and add snips",
	}
	cmd.AddCommand(newSnipShowCommand(a))
	cmd.AddCommand(newSnipAddCommand(a))
	return cmd
}

func newSnipShowCommand(a *app) *cobra.Command {
	var (
		flags sessionFlags
		style string
	)

	cmd := &cobra.Command{
		Use:   "show <snip-id>",
		Short: "Render a snip in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseArgID(args[0])
			if err != nil {
				return err
			}
			sess, err := flags.session(cmd, a)
			if err != nil {
				return err
			}
			snip, err := a.snips.Get(cmd.Context(), sess, id)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), style, snipMarkdown(snip))
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&style, "style", "auto", "glamour style (auto, dark, light, notty)")
	return cmd
}

func newSnipAddCommand(a *app) *cobra.Command {
	var (
		flags        sessionFlags
		categoryID   int64
		categoryName string
		name         string
		lang         string
		private      bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a snip, reading the code from stdin",
		Long: `Add a snip for a user. The code is read from standard input.
Give --category to use an existing category or --new-category to create one.

Example:
  snipctl snip add -a 1 -u 7 --new-category "Sorting" --name quicksort --lang go < qs.go`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var choice service.CategoryChoice
			switch {
			case categoryID != 0 && categoryName != "":
				return fmt.Errorf("use either --category or --new-category")
			case categoryID != 0:
				choice = service.ExistingCategory{ID: categoryID}
			default:
				choice = service.NewCategory{Name: categoryName}
			}

			code, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("reading code: %w", err)
			}
			sess, err := flags.session(cmd, a)
			if err != nil {
				return err
			}
			id, err := a.snips.Create(cmd.Context(), sess, service.CreateSnipInput{
				Category: choice,
				Name:     name,
				Private:  private,
				Language: lang,
				Code:     string(code),
				Description: model.Description{
					Format: model.FormatMarkdown,
				},
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d\n", id)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().Int64Var(&categoryID, "category", 0, "existing category id")
	cmd.Flags().StringVar(&categoryName, "new-category", "", "name of a category to create")
	cmd.Flags().StringVar(&name, "name", "", "snip name")
	cmd.Flags().StringVar(&lang, "lang", "", "language key, e.g. go or python")
	cmd.Flags().BoolVar(&private, "private", false, "hide the snip from other users")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func latestMarkdown(snips []model.Snip) string {
	if len(snips) == 0 {
		return "_No snips yet._\n"
	}
	var b strings.Builder
	b.WriteString("| ID | Name | Language | Created |\n|---|---|---|---|\n")
	for _, s := range snips {
		fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
			s.ID, escapeCell(s.Name), s.DisplayLanguage, s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func snipMarkdown(s *model.Snip) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	fmt.Fprintf(&b, "*%s* · category %d · %s\n\n", s.DisplayLanguage, s.CategoryID, s.URL)
	if s.Description.Text != "" && s.Description.Format == model.FormatMarkdown {
		b.WriteString(s.Description.Text)
		b.WriteString("\n\n")
	}
	fence := "```"
	for strings.Contains(s.Code, fence) {
		fence += "`"
	}
	fmt.Fprintf(&b, "%s%s\n%s\n%s\n", fence, s.Language, strings.TrimRight(s.Code, "\n"), fence)
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func render(w io.Writer, style, markdown string) error {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}
