package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/FocusVibrance/internal/config"
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Manage window title filters",
	Long: `Add or remove the window titles that receive the vibrance boost.

Titles are matched exactly and case-sensitively against the focused
window's full title. Use 'focusvibrance list' to see current titles.`,
}

var titleAddCmd = &cobra.Command{
	Use:   "add TITLE",
	Short: "Add a title filter",
	Example: `  # Boost a game window
  focusvibrance title add "Cyberpunk 2077"`,
	Args: cobra.ExactArgs(1),
	RunE: runTitleAdd,
}

var titleRemoveCmd = &cobra.Command{
	Use:   "remove TITLE",
	Short: "Remove a title filter",
	Args:  cobra.ExactArgs(1),
	RunE:  runTitleRemove,
}

var titleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List title filters",
	Args:  cobra.NoArgs,
	RunE:  runTitleList,
}

func init() {
	rootCmd.AddCommand(titleCmd)
	titleCmd.AddCommand(titleAddCmd)
	titleCmd.AddCommand(titleRemoveCmd)
	titleCmd.AddCommand(titleListCmd)
}

func runTitleAdd(cmd *cobra.Command, args []string) error {
	title := args[0]

	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := configMgr.AddTitleFilter(title); err != nil {
		return fmt.Errorf("failed to add title filter: %w", err)
	}

	fmt.Printf("Added title filter: %q\n", title)
	return nil
}

func runTitleRemove(cmd *cobra.Command, args []string) error {
	title := args[0]

	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := configMgr.RemoveTitleFilter(title); err != nil {
		return fmt.Errorf("failed to remove title filter: %w", err)
	}

	fmt.Printf("Removed title filter: %q\n", title)
	return nil
}

func runTitleList(cmd *cobra.Command, args []string) error {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	filters := configMgr.TitleFilters()

	fmt.Println("Title Filters:")
	if len(filters) == 0 {
		fmt.Println("  (none)")
	} else {
		for i, title := range filters {
			fmt.Printf("  %d. %s\n", i+1, title)
		}
	}

	return nil
}
