package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/careercompass/compass/internal/filter"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/render"
)

var (
	recFilter filter.RecommendationFilter
	recHTML   bool
)

var recommendationsCmd = &cobra.Command{
	Use:       "recommendations <courses|certificates|jobs>",
	Short:     "Show recommendations based on your profile",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"courses", "certificates", "jobs"},
	RunE:      runRecommendations,
}

func init() {
	recommendationsCmd.Flags().StringVar(&recFilter.Difficulty, "difficulty", "", "only courses of this difficulty")
	recommendationsCmd.Flags().StringVar(&recFilter.Category, "category", "", "only items of this category")
	recommendationsCmd.Flags().StringVar(&recFilter.Experience, "experience", "", "only jobs at this experience level")
	recommendationsCmd.Flags().StringVar(&recFilter.Remote, "remote", "", "only jobs with this remote setting")
	recommendationsCmd.Flags().BoolVar(&recHTML, "html", false, "print the rendered HTML fragment")
	rootCmd.AddCommand(recommendationsCmd)
}

func runRecommendations(cmd *cobra.Command, args []string) error {
	kind := strings.ToLower(args[0])
	switch kind {
	case "courses", "certificates", "jobs":
	default:
		return fmt.Errorf("unknown recommendation kind %q (want courses, certificates or jobs)", args[0])
	}

	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	recs, insights, err := a.client.Recommendations(cmd.Context(), kind)
	if err != nil {
		return err
	}
	total := len(recs)
	recs = recFilter.Apply(recs)
	logger.Debug("recommendations", "kind", kind, "total", total, "shown", len(recs))

	out := cmd.OutOrStdout()
	if recHTML {
		nodes := make([]*html.Node, 0, len(recs)+1)
		for _, r := range recs {
			nodes = append(nodes, render.RecommendationCard(r))
		}
		if panel := render.InsightsPanel(insights); panel != nil {
			nodes = append(nodes, panel)
		}
		if err := render.Render(out, nodes...); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return nil
	}
	printRecommendations(out, recs, total)
	printInsights(out, insights)
	return nil
}

func printRecommendations(w io.Writer, recs []model.Recommendation, total int) {
	if len(recs) == 0 {
		fmt.Fprintf(w, "No recommendations match (%d before filtering).\n", total)
		return
	}
	for i, r := range recs {
		fmt.Fprintf(w, "%2d. %s", i+1, r.Title)
		if r.Provider != "" {
			fmt.Fprintf(w, " (%s)", r.Provider)
		}
		fmt.Fprintln(w)
		var meta []string
		for _, v := range []string{r.Difficulty, r.Category, r.ExperienceLevel, r.Location, r.SalaryRange} {
			if v != "" {
				meta = append(meta, v)
			}
		}
		if len(meta) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(meta, " | "))
		}
		if r.URL != "" {
			fmt.Fprintf(w, "    %s\n", r.URL)
		}
	}
}

func printInsights(w io.Writer, ins *model.Insights) {
	if ins == nil {
		return
	}
	fmt.Fprintln(w, "\nAI Insights")
	if ins.Text != "" {
		fmt.Fprintf(w, "  %s\n", ins.Text)
		return
	}
	for _, r := range ins.Recommendations {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	for _, part := range []struct{ label, body string }{
		{"Reasoning", ins.Reasoning},
		{"Skills gap", ins.SkillsGap},
		{"Career advice", ins.CareerAdvice},
	} {
		if part.body != "" {
			fmt.Fprintf(w, "  %s: %s\n", part.label, part.body)
		}
	}
}
