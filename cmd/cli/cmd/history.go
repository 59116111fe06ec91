package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/talonworks/sortie/pkg/logger"
	"github.com/talonworks/sortie/pkg/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage archived debriefs",
	Long:  `Browse, inspect and prune the local debrief archive`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived debriefs",
	RunE:  listHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one archived debrief",
	Long:  `Show an archived debrief by ID. A unique ID prefix from the listing works too.`,
	Args:  cobra.ExactArgs(1),
	RunE:  showHistory,
}

var historyPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every archived debrief",
	RunE:  purgeHistory,
}

func init() {
	historyCmd.PersistentFlags().String("db", "", "archive database path (default ~/.sortie/debriefs.db)")
	historyListCmd.Flags().Int("limit", 20, "maximum number of debriefs to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPurgeCmd)
}

// resolveArchivePath picks the archive location: the --db flag, then the
// db config key, then the default under the home directory.
func resolveArchivePath(cmd *cobra.Command) string {
	if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
		return dbPath
	}
	if dbPath := viper.GetString("db"); dbPath != "" {
		return dbPath
	}
	return store.DefaultPath()
}

func listHistory(cmd *cobra.Command, args []string) error {
	s, err := store.Open(resolveArchivePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = s.Close() }()

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := s.ListDebriefs(limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No archived debriefs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSCENARIO\tRESULT\tDURATION\tCREDITS\tWHEN")
	_, _ = fmt.Fprintln(w, "--\t--------\t------\t--------\t-------\t----")

	for _, r := range records {
		result := "defeat"
		if r.Victory {
			result = "victory"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.0fs\t%d\t%s\n",
			shortID(r.ID),
			r.Scenario,
			result,
			r.Duration,
			r.Credits,
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	return w.Flush()
}

func showHistory(cmd *cobra.Command, args []string) error {
	s, err := store.Open(resolveArchivePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = s.Close() }()

	debrief, err := s.LoadDebrief(args[0])
	if err != nil {
		return err
	}

	debrief.PrintConsole()
	return nil
}

func purgeHistory(cmd *cobra.Command, args []string) error {
	var confirm bool
	confirmPrompt := &survey.Confirm{
		Message: "Delete every archived debrief?",
		Default: false,
	}
	if err := survey.AskOne(confirmPrompt, &confirm); err != nil {
		return err
	}

	if !confirm {
		fmt.Println("Purge cancelled")
		return nil
	}

	s, err := store.Open(resolveArchivePath(cmd))
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer func() { _ = s.Close() }()

	removed, err := s.Purge()
	if err != nil {
		return err
	}
	logger.Successf("Removed %d archived debriefs", removed)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
