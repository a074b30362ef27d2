package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var puzzlesTheme string

var puzzlesCmd = &cobra.Command{
	Use:   "puzzles",
	Short: "List the puzzle bank",
	Long:  `List every puzzle in the loaded bank, optionally limited to one theme. Prints answers.`,
	Args:  cobra.NoArgs,
	RunE:  runPuzzles,
}

func init() {
	rootCmd.AddCommand(puzzlesCmd)
	puzzlesCmd.Flags().StringVar(&puzzlesTheme, "theme", "", "only list puzzles with this theme")
}

func runPuzzles(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	n := 0
	for _, p := range a.Bank.All() {
		if puzzlesTheme != "" && !strings.EqualFold(p.Theme, puzzlesTheme) {
			continue
		}
		fmt.Fprintf(out, "%-20s %s\n", p.Theme, p.Answer)
		n++
	}
	fmt.Fprintf(out, "%d puzzle(s)\n", n)
	return nil
}
