package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

const testAlignment = `>A
ACGT
>B
ACGA
>C
TCGT
`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	stdout := new(bytes.Buffer)
	app.SetStdin(strings.NewReader(stdin))
	app.SetStdout(stdout)
	err := app.Execute(args)
	return stdout.String(), err
}

func writeFile(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(bs)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "simplephylo "+version+"\n" {
		t.Fatalf("Unexpected version output %q.", out)
	}
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "input.fasta", testAlignment)
	outDir := filepath.Join(dir, "trees")

	if _, err := run(t, "", "build", "-o", outDir, in); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		file, tree string
	}{
		{"upgma.nwk", "((A:0.125,B:0.125):0.0625,C:0.1875);\n"},
		{"parsimony.nwk", "(B:0,(A:0,C:1):1);\n"},
	}
	for _, test := range tests {
		if got := readFile(t, filepath.Join(outDir, test.file)); got != test.tree {
			t.Fatalf("Expected %s to be %q, got %q.", test.file, test.tree, got)
		}
	}
}

func TestBuildDraw(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "input.fasta", testAlignment)
	out, err := run(t, "", "build", "--draw", "-o", dir, in)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"UPGMA tree:\n", "Parsimony tree:\n", "_ C\n"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Expected %q in the output:\n%s", want, out)
		}
	}
}

func TestBuildStdin(t *testing.T) {
	outDir := t.TempDir()
	out, err := run(t, ">A\nACGT\n>B\nACCA\n", "build", "--output", outDir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "parsimony.nwk") {
		t.Fatalf("No parsimony tree should be built from two sequences.")
	}
	if _, err := os.Stat(filepath.Join(outDir, "parsimony.nwk")); err == nil {
		t.Fatalf("No parsimony tree should be written.")
	}
	if got := readFile(t, filepath.Join(outDir, "upgma.nwk")); got != "(A:0.25,B:0.25);\n" {
		t.Fatalf("Unexpected UPGMA tree %q.", got)
	}
}

func TestBuildErrors(t *testing.T) {
	if _, err := run(t, ">A\nACGT\n>B\nACG\n", "build", "-o", t.TempDir()); err == nil {
		t.Fatalf("Expected an error for sequences of different lengths.")
	}
	if _, err := run(t, "", "build", "a", "b"); err == nil {
		t.Fatalf("Expected a usage error.")
	}
}

func TestBuildAlign(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on Windows")
	}
	dir := t.TempDir()
	muscle := writeFile(t, dir, "muscle", "#!/bin/sh\ncp \"$2\" \"$4\"\n")
	if err := os.Chmod(muscle, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := writeFile(t, dir, "config.toml", `
[aligner]
path = "`+muscle+`"
timeout = "10s"

[output]
dir = "`+filepath.Join(dir, "out")+`"
columns = 2
`)
	in := writeFile(t, dir, "input.fasta", testAlignment)
	if _, err := run(t, "", "build", "--align", "--config", cfg, in); err != nil {
		t.Fatal(err)
	}
	aligned := readFile(t, filepath.Join(dir, "out", "aligned.fasta"))
	if !strings.HasPrefix(aligned, ">A\nAC\nGT\n>B\n") {
		t.Fatalf("Unexpected alignment:\n%s", aligned)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "parsimony.nwk")); err != nil {
		t.Fatal(err)
	}
}

func TestDistance(t *testing.T) {
	out, err := run(t, testAlignment, "distance")
	if err != nil {
		t.Fatal(err)
	}
	answer := "\tA\tB\tC\n" +
		"A\t0.0000\t0.2500\t0.2500\n" +
		"B\t0.2500\t0.0000\t0.5000\n" +
		"C\t0.2500\t0.5000\t0.0000\n"
	if out != answer {
		t.Fatalf("Expected\n%s\nbut got\n%s", answer, out)
	}
}

func TestDraw(t *testing.T) {
	trees := "((A:0.125,B:0.125):0.0625,C:0.1875);\n(B:0,(A:0,C:1):1);\n"
	out, err := run(t, trees, "draw", "--width", "30")
	if err != nil {
		t.Fatal(err)
	}
	answer := "          _________________ A\n" +
		"  _______|\n" +
		"_|       |_________________ B\n" +
		" |\n" +
		" |_________________________ C\n" +
		"\n" +
		" , B\n" +
		"_|\n" +
		" |            , A\n" +
		" |____________|\n" +
		"              |____________ C\n"
	if out != answer {
		t.Fatalf("Expected\n%s\nbut got\n%s", answer, out)
	}

	if _, err := run(t, "(A,B);", "draw", "--width", "2"); err == nil {
		t.Fatalf("Expected an error for a width that is too small.")
	}
}

func TestScore(t *testing.T) {
	dir := t.TempDir()
	aln := writeFile(t, dir, "aln.fasta", testAlignment)
	out, err := run(t, "((A,B),C);\n(A,B,C);\n", "score", "-", aln)
	if err != nil {
		t.Fatal(err)
	}
	if out != "2\n2\n" {
		t.Fatalf("Unexpected scores %q.", out)
	}
	if _, err := run(t, "((A,B),D);", "score", "-", aln); err == nil {
		t.Fatalf("Expected an error for an unknown leaf.")
	}
}

func TestConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "simplephylo.toml", `
workers = 4

[aligner]
path = "/opt/muscle5"
args = ["-align", "{in}", "-output", "{out}"]
timeout = "90s"

[output]
precision = 4
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Workers != 4 || cfg.Aligner.Path != "/opt/muscle5" ||
		len(cfg.Aligner.Args) != 4 || cfg.Output.Precision != 4 {
		t.Fatalf("Unexpected config %+v.", cfg)
	}
	if cfg.Aligner.Timeout.Duration != 90*time.Second {
		t.Fatalf("Expected a timeout of 90s, got %s.", cfg.Aligner.Timeout)
	}
	// Keys that aren't in the file keep their defaults.
	if cfg.Output.Dir != "output" || cfg.Output.Columns != 60 ||
		cfg.Output.Width != 80 {
		t.Fatalf("Expected default output settings, got %+v.", cfg.Output)
	}

	bad := writeFile(t, dir, "bad.toml", "[aligner]\npth = \"muscle\"\n")
	if _, err := loadConfig(bad); err == nil ||
		!strings.Contains(err.Error(), "aligner.pth") {
		t.Fatalf("Expected an unknown key error, got %v.", err)
	}
	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("Expected an error for a missing config file.")
	}
	timeout := writeFile(t, dir, "timeout.toml", "[aligner]\ntimeout = \"soon\"\n")
	if _, err := loadConfig(timeout); err == nil {
		t.Fatalf("Expected an error for a bad timeout.")
	}

	width := writeFile(t, dir, "width.toml", "[output]\nwidth = 0\n")
	if _, err := loadConfig(width); err == nil {
		t.Fatalf("Expected an error for a drawing width of 0.")
	}

	cfg, err = loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Output.Precision != -1 || cfg.Workers != 1 {
		t.Fatalf("Expected the default config, got %+v.", cfg)
	}
}
