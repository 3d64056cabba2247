package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/baldagame/internal/api/request"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Turn commands for a running game",
	}

	cmd.AddCommand(newGameDirectionCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGamePassCmd())
	cmd.AddCommand(newGameResignCmd())

	return cmd
}

// gameAction posts to a game endpoint and prints the effects
func gameAction(cmd *cobra.Command, code, action string, body any) error {
	var result ActionResult

	if err := client.Post(cmd.Context(), lobbyPath(code, "game", action), body, &result); err != nil {
		return err
	}

	NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
	return nil
}

func newGameDirectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "direction <code> <left|right>",
		Short:     "Choose the side to add your letter to",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"left", "right"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return gameAction(cmd, args[0], "direction", request.DirectionRequest{Direction: args[1]})
		},
	}
}

func newGameMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <code> <letter> <word>",
		Short: "Add a letter and name a word containing the new sequence",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gameAction(cmd, args[0], "move", request.MoveRequest{Letter: args[1], Word: args[2]})
		},
	}
}

func newGamePassCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pass <code>",
		Short: "Skip your turn (once per match)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gameAction(cmd, args[0], "pass", nil)
		},
	}
}

func newGameResignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resign <code>",
		Short: "Leave the match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gameAction(cmd, args[0], "resign", nil)
		},
	}
}
