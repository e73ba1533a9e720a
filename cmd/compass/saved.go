package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	"github.com/careercompass/compass/internal/button"
	"github.com/careercompass/compass/internal/model"
	"github.com/careercompass/compass/internal/render"
	"github.com/careercompass/compass/internal/store"
)

var (
	savedLocal bool
	savedHTML  bool
)

var savedCmd = &cobra.Command{
	Use:   "saved [category]",
	Short: "List saved items",
	Long:  "List saved certificates, courses and jobs. With --local the local mirror is read instead of the server.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSaved,
}

var saveCmd = &cobra.Command{
	Use:   "save <category> <item-json|->",
	Short: "Save an item",
	Long:  "Save an item given as a JSON object, or read from stdin when the argument is -.",
	Args:  cobra.ExactArgs(2),
	RunE:  runSave,
}

var unsaveCmd = &cobra.Command{
	Use:   "unsave <category> <id>",
	Short: "Remove a saved item",
	Args:  cobra.ExactArgs(2),
	RunE:  runUnsave,
}

func init() {
	savedCmd.Flags().BoolVar(&savedLocal, "local", false, "read the local mirror instead of the server")
	savedCmd.Flags().BoolVar(&savedHTML, "html", false, "print the rendered HTML fragment")
	rootCmd.AddCommand(savedCmd, saveCmd, unsaveCmd)
}

func categoriesArg(args []string) ([]model.Category, error) {
	if len(args) == 0 {
		return model.Categories(), nil
	}
	c, err := model.ParseCategory(args[0])
	if err != nil {
		return nil, err
	}
	return []model.Category{c}, nil
}

func runSaved(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	categories, err := categoriesArg(args)
	if err != nil {
		return err
	}
	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	out := cmd.OutOrStdout()

	if savedLocal {
		if !cfg.Store.Enabled {
			return fmt.Errorf("the local mirror is disabled: set store.enabled in the config")
		}
		for _, c := range categories {
			docs, err := a.store.List(cmd.Context(), store.Collection(c), cfg.UserID)
			if err != nil {
				return err
			}
			printDocs(out, c, docs)
		}
		return nil
	}

	if err := a.requireLogin(); err != nil {
		return err
	}
	for _, c := range categories {
		if err := a.cache.Hydrate(cmd.Context(), c); err != nil {
			return err
		}
	}

	for _, c := range categories {
		items := a.cache.Items(c)
		if savedHTML {
			rows := make([]*html.Node, 0, len(items))
			for _, it := range items {
				b := a.registry.Add(it.Category, it.Payload)
				rows = append(rows, render.SavedItemRow(it, render.ControlOf(b)))
			}
			if err := render.Render(out, render.SavedItems(c, rows)); err != nil {
				return err
			}
			fmt.Fprintln(out)
			continue
		}
		printSaved(out, c, items)
	}
	return nil
}

func printSaved(w io.Writer, c model.Category, items []model.SavedItem) {
	fmt.Fprintf(w, "Saved %s (%d)\n", c.Plural(), len(items))
	if len(items) == 0 {
		fmt.Fprintln(w, "  No saved items yet.")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "  %-12s %s\n", it.ID, headingOf(c, it.Payload))
		if sub := subtitleOf(c, it.Payload); sub != "" {
			fmt.Fprintf(w, "  %-12s %s\n", "", sub)
		}
	}
}

func subtitleOf(c model.Category, p model.Payload) string {
	var parts []string
	keys := map[model.Category][]string{
		model.CategoryCertificate: {"provider", "cost", "url"},
		model.CategoryCourse:      {"provider", "price", "url"},
		model.CategoryJob:         {"industry", "company_size"},
	}[c]
	for _, k := range keys {
		if v := p.String(k); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

func printDocs(w io.Writer, c model.Category, docs []store.Doc) {
	fmt.Fprintf(w, "Mirrored %s (%d)\n", c.Plural(), len(docs))
	for _, d := range docs {
		fmt.Fprintf(w, "  %-12s %s  %s\n", d.ItemID, d.SavedAt.Format("2006-01-02 15:04"), headingOf(c, d.Payload))
	}
}

func headingOf(c model.Category, p model.Payload) string {
	if c == model.CategoryCourse {
		return p.String("title")
	}
	return p.String("name")
}

func runSave(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	category, err := model.ParseCategory(args[0])
	if err != nil {
		return err
	}
	payload, err := readPayload(cmd.InOrStdin(), args[1])
	if err != nil {
		return err
	}

	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}
	a.hydrate(cmd.Context(), category)

	b := a.registry.Add(category, payload)
	if state, id := b.State(); state == button.StateSaved {
		fmt.Fprintf(cmd.OutOrStdout(), "Already saved (id %s)\n", id)
		return nil
	}
	if _, err := b.Click(cmd.Context()); err != nil {
		return err
	}
	_, id := b.State()
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %q (id %s)\n", category, headingOf(category, payload), id)
	return nil
}

func runUnsave(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustConfig(logger)
	category, err := model.ParseCategory(args[0])
	if err != nil {
		return err
	}
	id := args[1]

	a := mustApp(cfg, logger, setupNotifier(cfg, logger))
	defer a.close()
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.cache.Hydrate(cmd.Context(), category); err != nil {
		return err
	}

	var target *model.SavedItem
	for _, it := range a.cache.Items(category) {
		if it.ID == id {
			target = &it
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no saved %s with id %s", category, id)
	}

	// The cache holds the item, so the button starts as Saved and a click removes it.
	b := a.registry.Add(category, target.Payload)
	if _, err := b.Click(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %q\n", category, headingOf(category, target.Payload))
	return nil
}

func readPayload(stdin io.Reader, arg string) (model.Payload, error) {
	var r io.Reader = strings.NewReader(arg)
	if arg == "-" {
		r = stdin
	} else if strings.HasPrefix(arg, "@") {
		f, err := os.Open(strings.TrimPrefix(arg, "@"))
		if err != nil {
			return nil, fmt.Errorf("open item file: %w", err)
		}
		defer f.Close()
		r = f
	}
	var p model.Payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("item must be a JSON object: %w", err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("item is empty")
	}
	return p, nil
}
