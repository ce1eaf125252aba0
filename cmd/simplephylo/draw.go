package main

import (
	"fmt"
	"io"

	"github.com/js-arias/command"

	"github.com/TuftsBCB/phylo/newick"
)

var drawCmd = &command.Command{
	Usage: "draw [--config <file>] [--width <columns>] [<newick-file>]",
	Short: "draw trees as text",
	Long: `
Command draw reads trees in Newick format and draws each one as text, with
the root on the left and one leaf per line. Horizontal distances are in
proportion to branch lengths.

Trees are read from the named file or, if no file is given or the file is
"-", from the standard input. Drawings are separated by a blank line.

The flag --width sets the number of columns of a drawing, labels included.
By default, the width of the configuration is used (80).
	`,
	SetFlags: drawFlags,
	Run:      runDraw,
}

var widthFlag int

func drawFlags(c *command.Command) {
	c.Flags().StringVar(&configFlag, "config", "", "")
	c.Flags().IntVar(&widthFlag, "width", 0, "")
}

func runDraw(c *command.Command, args []string) error {
	if len(args) > 1 {
		return c.UsageError("too many arguments")
	}
	in := "-"
	if len(args) == 1 {
		in = args[0]
	}
	cfg, err := loadConfig(configFlag)
	if err != nil {
		return err
	}
	if widthFlag > 0 {
		cfg.Output.Width = widthFlag
	}

	r, closer, err := open(c.Stdin(), in)
	if err != nil {
		return err
	}
	defer closer()
	trees, err := newick.NewReader(r).ReadAll()
	if err != nil {
		return err
	}
	for i, tree := range trees {
		if i > 0 {
			fmt.Fprintln(c.Stdout())
		}
		if err := tree.Draw(c.Stdout(), cfg.Output.Width); err != nil {
			return fmt.Errorf("tree %d: %v", i+1, err)
		}
	}
	return nil
}

// drawTree writes a titled drawing of tree.
func drawTree(w io.Writer, title string, tree *newick.Tree, width int) error {
	fmt.Fprintf(w, "\n%s\n", title)
	return tree.Draw(w, width)
}
