package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/richjohnson-wwt/nat-wof/internal/game"
	"github.com/richjohnson-wwt/nat-wof/internal/httpserver"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operator commands for the current game",
}

var adminSetTurnCmd = &cobra.Command{
	Use:   "set-turn <player>",
	Short: "Hand the turn to a player (AI1, AI2 or Human)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminSetTurn,
}

var adminFinishCmd = &cobra.Command{
	Use:   "finish",
	Short: "Mark the current game finished",
	Args:  cobra.NoArgs,
	RunE:  runAdminFinish,
}

var adminHashCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long:  `Print a bcrypt hash for ADMIN_PASSWORD_HASH. Reads the password from stdin if not given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAdminHash,
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminSetTurnCmd)
	adminCmd.AddCommand(adminFinishCmd)
	adminCmd.AddCommand(adminHashCmd)
}

func runAdminSetTurn(cmd *cobra.Command, args []string) error {
	player := args[0]
	if !game.IsPlayer(player) {
		return fmt.Errorf("invalid player: %s", player)
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.State.SetTurn(cmd.Context(), player); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Turn: %s\n", player)
	return nil
}

func runAdminFinish(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.State.SetField(cmd.Context(), game.FieldStatus, string(game.StatusFinished)); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Game finished.")
	return nil
}

func runAdminHash(cmd *cobra.Command, args []string) error {
	var pw string
	if len(args) == 1 {
		pw = args[0]
	} else {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		pw = strings.TrimSpace(line)
	}
	if pw == "" {
		return fmt.Errorf("password cannot be empty")
	}
	hash, err := httpserver.HashPassword(pw)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
