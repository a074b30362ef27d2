package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/runner"
)

var (
	newDaily bool
	playAuto bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new game",
	Long:  `Start a new game with a random puzzle, or today's puzzle with --daily.`,
	Args:  cobra.NoArgs,
	RunE:  runNew,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current board",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the current game interactively",
	Long: `Pick which player takes each turn from a menu, or let the stored turn
order drive the game with --auto.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

var humanCmd = &cobra.Command{
	Use:   "human",
	Short: "Play one turn as the human player",
	Args:  cobra.NoArgs,
	RunE:  runHuman,
}

var aiCmd = &cobra.Command{
	Use:   "ai <player>",
	Short: "Run one automated turn for AI1 or AI2",
	Long:  `Run one automated turn and print the result, including every step, as JSON.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAI,
}

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(humanCmd)
	rootCmd.AddCommand(aiCmd)

	newCmd.Flags().BoolVar(&newDaily, "daily", false, "use today's puzzle")
	playCmd.Flags().BoolVar(&playAuto, "auto", false, "follow the stored turn order until the game ends")
}

func runNew(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	start := a.NewGame
	if newDaily {
		start = a.NewDailyGame
	}
	id, err := start(ctx)
	if err != nil {
		return err
	}
	g, err := a.State.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Started game %d (%s)\n%s\n", id, g.Theme, g.Puzzle)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return runner.NewHuman(a.Actions, cmd.InOrStdin(), cmd.OutOrStdout()).ShowState(cmd.Context())
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	o := runner.NewOrchestrator(a.Actions, a.AI, a, cmd.InOrStdin(), cmd.OutOrStdout())
	return o.Run(cmd.Context(), playAuto)
}

func runHuman(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	o := runner.NewOrchestrator(a.Actions, a.AI, a, cmd.InOrStdin(), cmd.OutOrStdout())
	if err := o.RunPlayer(cmd.Context(), game.PlayerHuman); err != nil && !errors.Is(err, runner.ErrQuit) {
		return err
	}
	return nil
}

func runAI(cmd *cobra.Command, args []string) error {
	player := args[0]
	if player != game.PlayerAI1 && player != game.PlayerAI2 {
		return fmt.Errorf("invalid player: %s (valid: %s, %s)", player, game.PlayerAI1, game.PlayerAI2)
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.AI.TakeTurn(cmd.Context(), player)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
