package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vetdiff/vetdiff/internal/history"
	"github.com/vetdiff/vetdiff/internal/project"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scans for the current project",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyLimit int

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of scans to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	proj, err := project.Detect(cfg.Review.RepoPath)
	if err != nil {
		return err
	}

	store, err := history.NewStore(history.StoreConfig{Path: cfg.History.Path})
	if err != nil {
		return err
	}
	defer store.Close()

	scans, err := store.RecentScans(cmd.Context(), proj.Name, historyLimit)
	if err != nil {
		return err
	}
	if len(scans) == 0 {
		fmt.Printf("No recorded scans for %s\n", proj.Name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tBRANCH\tSCOPE\tTOTAL\tCRITICAL\tMAJOR\tWARNING\tDURATION")
	for _, s := range scans {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			s.CreatedAt.Local().Format("2006-01-02 15:04"),
			s.Branch, s.Scope, s.Total,
			s.CriticalCount, s.MajorCount, s.WarningCount,
			s.Duration.Round(time.Millisecond))
	}
	return w.Flush()
}
