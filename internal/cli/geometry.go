package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lethalposters/pkg/geometry"
)

// geometryCommand prints the fixed regions images are composited into.
func (c *CLI) geometryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "geometry",
		Short: "Show where images are placed on each template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), geometryTable())
			tip := geometry.TipSize()
			painting := geometry.PaintingSize()
			printInfo("tip canvas %dx%d, painting %dx%d at %v", tip.Width, tip.Height, painting.Width, painting.Height, geometry.PaintingOffset())
			return nil
		},
	}
}
