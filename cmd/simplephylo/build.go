package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/js-arias/command"

	"github.com/TuftsBCB/phylo"
	"github.com/TuftsBCB/phylo/aligner"
	"github.com/TuftsBCB/phylo/distance"
	"github.com/TuftsBCB/phylo/fasta"
	"github.com/TuftsBCB/phylo/msa"
	"github.com/TuftsBCB/phylo/newick"
	"github.com/TuftsBCB/phylo/parsimony"
	"github.com/TuftsBCB/phylo/upgma"
	"github.com/TuftsBCB/seq"
)

var buildCmd = &command.Command{
	Usage: `build [--align] [--draw] [--config <file>] [-o|--output <dir>]
	[<fasta-file>]`,
	Short: "build UPGMA and parsimony trees",
	Long: `
Command build reads a multiple sequence alignment and writes two trees in
Newick format to the output directory: upgma.nwk, built by average linkage
clustering of p-distances, and parsimony.nwk, built by stepwise insertion
with Fitch parsimony and rooted at its midpoint.

The alignment is read from the named file or, if no file is given, from the
standard input. Aligned FASTA and Stockholm files are accepted.

With --align, the input is read as unaligned FASTA and aligned with MUSCLE
first. The alignment is written to aligned.fasta in the output directory.

With --draw, both trees are also drawn as text on the standard output (see
"simplephylo help draw").

A parsimony tree needs at least three sequences. With only two, just the
UPGMA tree is written.

The flag --config names a TOML configuration file. By default,
simplephylo.toml is read if it exists. The flag --output, or -o, overrides
the output directory of the configuration (default "output").
	`,
	SetFlags: buildFlags,
	Run:      runBuild,
}

var (
	alignFlag  bool
	drawFlag   bool
	configFlag string
	outputFlag string
)

func buildFlags(c *command.Command) {
	c.Flags().BoolVar(&alignFlag, "align", false, "")
	c.Flags().BoolVar(&drawFlag, "draw", false, "")
	c.Flags().StringVar(&configFlag, "config", "", "")
	c.Flags().StringVar(&outputFlag, "output", "", "")
	c.Flags().StringVar(&outputFlag, "o", "", "")
}

func runBuild(c *command.Command, args []string) error {
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
	if outputFlag != "" {
		cfg.Output.Dir = outputFlag
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return err
	}

	var aln seq.MSA
	if alignFlag {
		aln, err = alignInput(c.Stdin(), in, cfg)
	} else {
		aln, err = readAlignment(c.Stdin(), in)
	}
	if err != nil {
		return err
	}
	log.Printf("Parsed %d sequence(s) with %d columns.",
		len(aln.Entries), aln.Len())

	m, err := distance.ComputeWorkers(aln, cfg.Workers)
	if err != nil {
		return err
	}
	ut, err := upgma.Build(m)
	if err != nil {
		return err
	}
	upath := filepath.Join(cfg.Output.Dir, "upgma.nwk")
	if err := writeTree(upath, ut, cfg.Output.Precision); err != nil {
		return err
	}
	fmt.Fprintln(c.Stdout(), upath)
	if drawFlag {
		if err := drawTree(c.Stdout(), "UPGMA tree:", ut, cfg.Output.Width); err != nil {
			return err
		}
	}

	pt, err := parsimony.BuildWithMatrix(aln, m)
	if errors.Is(err, phylo.ErrInsufficientSequences) {
		log.Printf("%s %v No parsimony tree was written.", red("warning:"), err)
		return nil
	} else if err != nil {
		return err
	}
	score, err := parsimony.Score(pt, aln)
	if err != nil {
		return err
	}
	log.Printf("Parsimony score: %d.", score)
	ppath := filepath.Join(cfg.Output.Dir, "parsimony.nwk")
	if err := writeTree(ppath, pt, -1); err != nil {
		return err
	}
	fmt.Fprintln(c.Stdout(), ppath)
	if drawFlag {
		return drawTree(c.Stdout(), "Parsimony tree:", pt, cfg.Output.Width)
	}
	return nil
}

// alignInput reads unaligned FASTA and aligns it with MUSCLE. The alignment
// is saved in the output directory.
func alignInput(stdin io.Reader, name string, cfg config) (seq.MSA, error) {
	r, closer, err := open(stdin, name)
	if err != nil {
		return seq.MSA{}, err
	}
	defer closer()
	seqs, err := fasta.NewReader(r).ReadAll()
	if err != nil {
		return seq.MSA{}, err
	}

	ctx := context.Background()
	if cfg.Aligner.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Aligner.Timeout.Duration)
		defer cancel()
	}
	muscle := aligner.Muscle{
		Path:   cfg.Aligner.Path,
		Args:   cfg.Aligner.Args,
		Logger: log.Default(),
	}
	aln, err := muscle.Align(ctx, seqs)
	if err != nil {
		return seq.MSA{}, err
	}

	path := filepath.Join(cfg.Output.Dir, "aligned.fasta")
	f, err := os.Create(path)
	if err != nil {
		return seq.MSA{}, err
	}
	defer f.Close()
	w := fasta.NewAlignedWriter(f)
	w.Columns = cfg.Output.Columns
	for row := range aln.Entries {
		if err := w.Write(aln.GetFasta(row)); err != nil {
			return seq.MSA{}, err
		}
	}
	if err := w.Flush(); err != nil {
		return seq.MSA{}, err
	}
	log.Printf("Alignment saved to %s.", path)
	return aln, nil
}

// readAlignment reads an alignment from a file, or from stdin when name is
// "-". Files may be aligned FASTA or Stockholm, stdin only aligned FASTA.
func readAlignment(stdin io.Reader, name string) (seq.MSA, error) {
	if name == "-" {
		return msa.Read(stdin)
	}
	return msa.ReadFile(name)
}

func open(stdin io.Reader, name string) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeTree(path string, tree *newick.Tree, precision int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := newick.NewWriter(f)
	w.Precision = precision
	if err := w.WriteAll([]*newick.Tree{tree}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
