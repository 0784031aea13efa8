package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yuja201/S13P31B201-sub000/internal/output"
)

var saveCmd = &cobra.Command{
	Use:   "save <archive> <dest>",
	Short: "Copy a generated archive to a chosen location",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := output.SaveAs(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to save archive: %w", err)
		}
		color.Green("✅ Saved to %s", dest)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(saveCmd)
}
