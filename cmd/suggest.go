package cmd

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"yut/game"
	"yut/searcher"

	"github.com/spf13/cobra"
)

var (
	suggestNode     string
	suggestArrived  []string
	suggestDefender bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <outcome>...",
	Short: "List every legal path for a group and a set of dice",
	Long: `Suggest enumerates the paths a group standing on a node can take with the
given dice outcomes (do, backdo, gae, geol, yut, mo), best first.

Examples:
  yut suggest gae yut
  yut suggest --node R3 --arrived R2 backdo
  yut suggest --defender --node CBL mo`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return suggest(cmd, args, cmd.OutOrStdout())
	},
}

func suggest(cmd *cobra.Command, args []string, w io.Writer) error {
	dice := make([]game.Outcome, len(args))
	for i, arg := range args {
		if err := dice[i].UnmarshalText([]byte(strings.ToLower(arg))); err != nil {
			return err
		}
	}
	node := game.Node(suggestNode)
	if !node.IsValid() {
		return fmt.Errorf("%w: %q", game.ErrUnknownNode, suggestNode)
	}
	var arrived []game.Node
	for _, a := range suggestArrived {
		n := game.Node(a)
		if !n.IsValid() {
			return fmt.Errorf("%w: %q", game.ErrUnknownNode, a)
		}
		arrived = append(arrived, n)
	}

	knight := game.Knight{ID: "k", PlayerID: "me", Defender: suggestDefender}
	position := game.NewPosition(node, []game.Knight{knight}, arrived)
	candidates, err := searcher.New().Candidates(cmd.Context(), []game.Position{position}, dice, []game.Position{position})
	if err != nil {
		return err
	}
	slices.SortStableFunc(candidates, func(a, b searcher.Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	fmt.Fprintf(w, "%s %s at %s with %v: %d paths\n", position.Role(), knight.ID, node, dice, len(candidates))
	for _, c := range candidates {
		fmt.Fprintf(w, "%6.3f  %s -> %s  %s\n", c.Score, c.Path.Start(), c.Path.Destination(), c.Path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(suggestCmd)

	suggestCmd.Flags().StringVarP(&suggestNode, "node", "n", string(game.Start), "Node the group stands on")
	suggestCmd.Flags().StringSliceVarP(&suggestArrived, "arrived", "a", nil, "Nodes the group arrived from")
	suggestCmd.Flags().BoolVarP(&suggestDefender, "defender", "d", false, "Move the group on the defender board")
}
