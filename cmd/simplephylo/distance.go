package main

import (
	"fmt"
	"log"

	"github.com/js-arias/command"

	"github.com/TuftsBCB/phylo/distance"
	"github.com/TuftsBCB/seq"
)

var distanceCmd = &command.Command{
	Usage: "distance [--config <file>] [<alignment-file>]",
	Short: "print the distance matrix of an alignment",
	Long: `
Command distance prints the matrix of pairwise p-distances between the
sequences of an alignment: the fraction of columns in which two sequences
differ, where a gap against a residue is a difference and a gap against a
gap is not.

The alignment is read from the named file or, if no file is given, from the
standard input.
	`,
	SetFlags: func(c *command.Command) {
		c.Flags().StringVar(&configFlag, "config", "", "")
	},
	Run: runDistance,
}

func runDistance(c *command.Command, args []string) error {
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
	aln, err := readAlignment(c.Stdin(), in)
	if err != nil {
		return err
	}
	kind := "protein"
	if distance.Alphabet(aln).Equals(seq.AlphaDNA) {
		kind = "DNA"
	}
	log.Printf("Parsed %d %s sequence(s) with %d columns.",
		len(aln.Entries), kind, aln.Len())

	m, err := distance.ComputeWorkers(aln, cfg.Workers)
	if err != nil {
		return err
	}
	fmt.Fprint(c.Stdout(), m)
	return nil
}
