package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careercompass/compass/internal/browse"
	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/config"
	"github.com/careercompass/compass/internal/finder"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/notifier"
	"github.com/careercompass/compass/internal/render"
)

var (
	findHTML   bool
	findBrowse bool
	findSave   []int

	certInterests  []string
	certGoals      []string
	certPreference string

	courseLearning    []string
	courseBackground  []string
	courseAspirations []string

	jobTitle    string
	jobLocation string
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search for certificates, courses or companies",
}

var findCertificatesCmd = &cobra.Command{
	Use:   "certificates",
	Short: "Find certificates matching your interests and goals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(cmd, model.CategoryCertificate, func(ctx context.Context, f *finder.Finder) (finder.Results, error) {
			return f.FindCertificates(ctx, finder.CertificateForm{
				Interests:        certInterests,
				Goals:            certGoals,
				CoursePreference: certPreference,
			})
		})
	},
}

var findCoursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Get course suggestions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(cmd, model.CategoryCourse, func(ctx context.Context, f *finder.Finder) (finder.Results, error) {
			return f.SuggestCourses(ctx, finder.CourseForm{
				LearningPreferences:   courseLearning,
				EducationalBackground: courseBackground,
				CareerAspirations:     courseAspirations,
			})
		})
	},
}

var findCompaniesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Find companies hiring for a job title",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(cmd, model.CategoryJob, func(ctx context.Context, f *finder.Finder) (finder.Results, error) {
			return f.FindCompanies(ctx, finder.JobForm{JobTitle: jobTitle, Location: jobLocation})
		})
	},
}

func init() {
	findCertificatesCmd.Flags().StringSliceVar(&certInterests, "interest", nil, "area of interest (repeatable)")
	findCertificatesCmd.Flags().StringSliceVar(&certGoals, "goal", nil, "career goal (repeatable)")
	findCertificatesCmd.Flags().StringVar(&certPreference, "preference", "", "course preference, e.g. online or in-person")

	findCoursesCmd.Flags().StringSliceVar(&courseLearning, "learning", nil, "learning preference (repeatable)")
	findCoursesCmd.Flags().StringSliceVar(&courseBackground, "background", nil, "educational background (repeatable)")
	findCoursesCmd.Flags().StringSliceVar(&courseAspirations, "aspiration", nil, "career aspiration (repeatable)")

	findCompaniesCmd.Flags().StringVar(&jobTitle, "job-title", "", "job title to search for")
	findCompaniesCmd.Flags().StringVar(&jobLocation, "location", "", "preferred location")

	findCmd.PersistentFlags().BoolVar(&findHTML, "html", false, "print the rendered HTML fragment")
	findCmd.PersistentFlags().BoolVar(&findBrowse, "browse", false, "browse the results interactively")
	findCmd.PersistentFlags().IntSliceVar(&findSave, "save", nil, "save the results at these 1-based positions")

	findCmd.AddCommand(findCertificatesCmd, findCoursesCmd, findCompaniesCmd)
	rootCmd.AddCommand(findCmd)
}

type searchFunc func(ctx context.Context, f *finder.Finder) (finder.Results, error)

func runFind(cmd *cobra.Command, category model.Category, search searchFunc) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)

	if findBrowse {
		// The TUI owns the terminal: log nowhere and queue toasts for the status bar.
		return browseSearch(cmd, cfg, category, search)
	}

	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	a.hydrate(cmd.Context(), category)
	res, err := search(cmd.Context(), a.finder)
	if err != nil {
		printValidation(cmd.ErrOrStderr(), err)
		return err
	}

	buttons := make([]*button.Button, len(res.Entities))
	for i, e := range res.Entities {
		buttons[i] = a.registry.Add(e.Category(), e.Payload())
	}
	for _, pos := range findSave {
		if pos < 1 || pos > len(buttons) {
			return fmt.Errorf("--save %d: no such result (have %d)", pos, len(buttons))
		}
		// Failures are reported as toasts; keep saving the rest.
		_, _ = buttons[pos-1].Click(cmd.Context())
	}

	out := cmd.OutOrStdout()
	if findHTML {
		items := make([]render.Item, len(res.Entities))
		for i, e := range res.Entities {
			items[i] = render.Item{Entity: e, Control: render.ControlOf(buttons[i])}
		}
		if err := render.Render(out, render.Results(category, items, res.ParseErr)); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return nil
	}
	printResults(out, category, res, buttons)
	return nil
}

func browseSearch(cmd *cobra.Command, cfg *config.Config, category model.Category, search searchFunc) error {
	ctx := cmd.Context()
	silent := slog.New(slog.DiscardHandler)
	queue := notifier.NewQueueNotifier(0)
	a, err := newApp(cfg, silent, queue)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	var res finder.Results
	err = browse.RunLoader(ctx, "Searching "+category.Plural(), func(ctx context.Context) error {
		a.hydrate(ctx, category)
		var err error
		res, err = search(ctx, a.finder)
		return err
	})
	if err != nil {
		printValidation(cmd.ErrOrStderr(), err)
		return err
	}
	if res.ParseErr != nil {
		return errors.New(render.ParseErrorMessage)
	}
	entries := browse.EntriesFromResults(res.Entities, a.registry)
	_, err = browse.Run(ctx, category.Title()+" results", entries, queue)
	return err
}

func printValidation(w io.Writer, err error) {
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	for _, f := range ve.Fields {
		fmt.Fprintf(w, "  %s: %s\n", f.Field, f.Message)
	}
}

func printResults(w io.Writer, category model.Category, res finder.Results, buttons []*button.Button) {
	if res.ParseErr != nil {
		fmt.Fprintln(w, render.ParseErrorMessage)
		return
	}
	if len(res.Entities) == 0 {
		fmt.Fprintf(w, "No %s found matching your criteria. Please try different selections.\n", category.Plural())
		return
	}
	for i, e := range res.Entities {
		state, _ := buttons[i].State()
		mark := ""
		if state == button.StateSaved {
			mark = "  [saved]"
		}
		fmt.Fprintf(w, "%2d. %s%s\n", i+1, e.Heading(), mark)
		if line := summary(e); line != "" {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func summary(e model.Entity) string {
	var parts []string
	add := func(label, v string) {
		if strings.TrimSpace(v) != "" {
			parts = append(parts, label+v)
		}
	}
	switch v := e.(type) {
	case model.Certificate:
		add("", v.Provider)
		add("relevance ", string(v.RelevanceScore))
		add("cost ", v.Cost)
		add("", v.URL)
	case model.Course:
		add("", v.Provider)
		add("level ", v.Difficulty)
		add("price ", v.Price)
		add("", v.URL)
	case model.Company:
		add("", v.Industry)
		add("size ", v.CompanySize)
		if v.SearchQuery != "" {
			add("", render.SearchURL(v.SearchQuery))
		}
	}
	return strings.Join(parts, " | ")
}
