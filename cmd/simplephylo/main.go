// Command simplephylo builds phylogenetic trees from a multiple sequence
// alignment.
//
// Usage:
//
//	simplephylo build [--align] [--draw] [--config <file>] [-o <dir>] <fasta-file>
//	simplephylo distance [--config <file>] <alignment-file>
//	simplephylo draw [--config <file>] [--width <columns>] <newick-file>
//	simplephylo score <newick-file> <alignment-file>
//	simplephylo version
//
// Run "simplephylo help <command>" for the details of each command.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/js-arias/command"
	"github.com/mattn/go-isatty"
)

var version = "v0.1.0"

var app = &command.Command{
	Usage: "simplephylo <command> [<argument>...]",
	Short: "build phylogenetic trees from aligned sequences",
}

func init() {
	app.Add(buildCmd)
	app.Add(distanceCmd)
	app.Add(drawCmd)
	app.Add(scoreCmd)
	app.Add(versionCmd)
}

var errMessage = red("error:")

// red makes text printed to a terminal red.
func red(str string) string {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return fmt.Sprintf("\033[31m%s\033[0m", str)
	}
	return str
}

func main() {
	log.SetFlags(log.LstdFlags)
	if err := app.Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errMessage, err)
		os.Exit(1)
	}
}
