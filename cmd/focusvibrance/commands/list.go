package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/FocusVibrance/internal/display"
	"github.com/bryanchriswhite/FocusVibrance/internal/engine"
	"github.com/bryanchriswhite/FocusVibrance/internal/wayland"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List windows and displays",
	Long: `List the toplevel windows and displays Hyprland currently reports,
marking the focused window and whether its title matches a filter.

Nothing is changed on screen; use it to find the exact title to add
with 'focusvibrance title add'.`,
	Example: `  # List windows in table format (default)
  focusvibrance list

  # List everything as JSON
  focusvibrance list --format json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listFormat string

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "output format (table or json)")
}

func runList(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	snapshot, err := wayland.Probe(cfg.WaylandDisplay, engine.Options{
		TitleFilters: cfg.TitleFilters,
		Saturation:   cfg.Saturation,
	})
	if err != nil {
		return err
	}

	switch listFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(snapshot)
	case "table":
		return printSnapshotTable(snapshot)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", listFormat)
	}
}

func printSnapshotTable(s engine.Snapshot) error {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	names := make(map[display.ID]string, len(s.Displays))
	for _, d := range s.Displays {
		names[d.ID] = d.Name
	}

	bold.Println("Displays:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tDESCRIPTION")
	for _, d := range s.Displays {
		fmt.Fprintf(w, "  %d\t%s\t%s\n", d.ID, d.Name, d.Description)
	}
	w.Flush()

	fmt.Println()
	bold.Println("Windows:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  HANDLE\tTITLE\tAPP ID\tDISPLAYS\tSTATE")
	for _, win := range s.Windows {
		title := win.Title
		if !win.HasTitle {
			title = "<no title>"
		}

		var displays []string
		for _, d := range win.Displays {
			if name, ok := names[d]; ok && name != "" {
				displays = append(displays, name)
			} else {
				displays = append(displays, d.String())
			}
		}

		state := ""
		if s.Focused != nil && s.Focused.Handle == win.Handle {
			if s.Matched {
				state = green.Sprint("focused, matched")
			} else {
				state = yellow.Sprint("focused")
			}
		}
		fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", win.Handle, title, win.AppID, strings.Join(displays, ","), state)
	}
	w.Flush()

	fmt.Println()
	fmt.Printf("Title filters: %s\n", strings.Join(s.TitleFilters, ", "))
	fmt.Printf("Saturation:    %.2f\n", s.Saturation)
	return nil
}
