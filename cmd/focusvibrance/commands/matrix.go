package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/FocusVibrance/internal/ctm"
	"github.com/bryanchriswhite/FocusVibrance/internal/wayland"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix [SATURATION]",
	Short: "Print the colour transform for a saturation",
	Long: `Print the 3x3 colour transform matrix sent to the compositor for a
saturation value. Without an argument the configured saturation is used.`,
	Example: `  # Matrix for the configured saturation
  focusvibrance matrix

  # Matrix for greyscale, as the 24.8 fixed point values on the wire
  focusvibrance matrix 0 --fixed`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMatrix,
}

var (
	matrixFixed  bool
	matrixFormat string
)

func init() {
	rootCmd.AddCommand(matrixCmd)

	matrixCmd.Flags().BoolVar(&matrixFixed, "fixed", false, "show 24.8 fixed point values")
	matrixCmd.Flags().StringVarP(&matrixFormat, "format", "f", "table", "output format (table or json)")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	var saturation float64
	if len(args) == 1 {
		s, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid saturation: %s", args[0])
		}
		saturation = s
	} else {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		saturation = cfg.Saturation
	}

	if !ctm.ValidSaturation(saturation) {
		return fmt.Errorf("saturation %v out of range [%v, %v]", saturation, ctm.MinSaturation, ctm.MaxSaturation)
	}
	m := ctm.Saturation(saturation)

	switch matrixFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		if matrixFixed {
			var fixed [9]int32
			for i, v := range m {
				fixed[i] = wayland.FixedFromFloat(v)
			}
			return encoder.Encode(fixed)
		}
		return encoder.Encode(m)
	case "table":
		for _, row := range m.Rows() {
			if matrixFixed {
				fmt.Printf("%6d %6d %6d\n",
					wayland.FixedFromFloat(row[0]), wayland.FixedFromFloat(row[1]), wayland.FixedFromFloat(row[2]))
			} else {
				fmt.Printf("%8.4f %8.4f %8.4f\n", row[0], row[1], row[2])
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", matrixFormat)
	}
}
