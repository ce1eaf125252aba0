package main

import (
	"fmt"

	"github.com/js-arias/command"

	"github.com/TuftsBCB/phylo/newick"
	"github.com/TuftsBCB/phylo/parsimony"
)

var scoreCmd = &command.Command{
	Usage: "score <newick-file> <alignment-file>",
	Short: "print the parsimony score of trees",
	Long: `
Command score reads trees in Newick format and prints the Fitch parsimony
score of each one for the given alignment, one per line. The leaves of every
tree must be labeled with exactly the names of the aligned sequences.

If the Newick file is "-", trees are read from the standard input.
	`,
	Run: runScore,
}

func runScore(c *command.Command, args []string) error {
	if len(args) != 2 {
		return c.UsageError("expecting a Newick file and an alignment")
	}
	if args[0] == "-" && args[1] == "-" {
		return c.UsageError("only one input can be read from stdin")
	}
	aln, err := readAlignment(c.Stdin(), args[1])
	if err != nil {
		return err
	}
	r, closer, err := open(c.Stdin(), args[0])
	if err != nil {
		return err
	}
	defer closer()
	trees, err := newick.NewReader(r).ReadAll()
	if err != nil {
		return err
	}
	for i, tree := range trees {
		score, err := parsimony.Score(tree, aln)
		if err != nil {
			return fmt.Errorf("tree %d: %v", i+1, err)
		}
		fmt.Fprintf(c.Stdout(), "%d\n", score)
	}
	return nil
}
