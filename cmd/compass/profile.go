package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/careercompass/compass/internal/finder"
	"github.com/careercompass/compass/internal/render"
)

var (
	profileForm     finder.ProfileForm
	careerPathsHTML bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Update your profile",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var trackCmd = &cobra.Command{
	Use:   "track <item-type> <item-id> <interaction>",
	Short: "Record an interaction with a recommended item",
	Args:  cobra.ExactArgs(3),
	RunE:  runTrack,
}

var careerPathsCmd = &cobra.Command{
	Use:   "career-paths",
	Short: "Show predicted career paths",
	Args:  cobra.NoArgs,
	RunE:  runCareerPaths,
}

func init() {
	profileCmd.Flags().StringVar(&profileForm.FullName, "name", "", "full name")
	profileCmd.Flags().StringVar(&profileForm.Email, "email", "", "email address")
	profileCmd.Flags().StringVar(&profileForm.Education, "education", "", "education")
	profileCmd.Flags().StringVar(&profileForm.Skills, "skills", "", "skills, comma separated")
	profileCmd.Flags().StringVar(&profileForm.Aspirations, "aspirations", "", "career aspirations")
	careerPathsCmd.Flags().BoolVar(&careerPathsHTML, "html", false, "print the rendered HTML fragment")
	rootCmd.AddCommand(profileCmd, trackCmd, careerPathsCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.accounts.SaveProfile(cmd.Context(), profileForm); err != nil {
		printValidation(cmd.ErrOrStderr(), err)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Profile saved")
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	itemID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("item id must be a number: %w", err)
	}

	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.client.TrackInteraction(cmd.Context(), args[0], itemID, args[2]); err != nil {
		return err
	}
	logger.Debug("interaction tracked", "item_type", args[0], "item_id", itemID, "interaction", args[2])
	return nil
}

func runCareerPaths(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}

	paths, err := a.client.CareerPathPrediction(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if careerPathsHTML {
		if err := render.Render(out, render.CareerPathModal(paths)); err != nil {
			return err
		}
		fmt.Fprintln(out)
		return nil
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No career path predictions available yet. Complete your profile to get started.")
		return nil
	}
	for _, p := range paths {
		fmt.Fprintf(out, "%s\n  salary %s | growth %s | %s\n", p.Name, p.AverageSalary, p.GrowthRate, p.Industry)
		if p.RequiredSkills != "" {
			fmt.Fprintf(out, "  skills: %s\n", p.RequiredSkills)
		}
	}
	return nil
}
