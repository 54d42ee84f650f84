package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/quizbot/internal/content"
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Load the test catalog and report accepted and skipped tests",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := cfg.ContentDir
	if len(args) == 1 {
		dir = args[0]
	}

	catalog, skipped := content.LoadDir(dir, logger.Named("content"))
	out := cmd.OutOrStdout()
	for _, t := range catalog.List() {
		def, _ := catalog.Get(t.Slug)
		fmt.Fprintf(out, "ok    %-20s %-10s %3d questions  %s\n", t.Slug, def.Strategy, len(def.Questions), t.Title)
	}
	for _, s := range skipped {
		fmt.Fprintf(out, "skip  %-20s %v\n", s.Slug, s.Err)
	}
	fmt.Fprintf(out, "%d loaded, %d skipped\n", catalog.Len(), len(skipped))

	if catalog.Len() == 0 {
		return fmt.Errorf("no tests could be loaded from %s", dir)
	}
	return nil
}
