/*
Package fasta provides routines for reading and writing FASTA files. Routines
are also provided to read and write aligned FASTA files, which is the format
alignment tools such as MUSCLE produce.

The format used is the one described by NCBI:
http://blast.ncbi.nlm.nih.gov/blastcgihelp.shtml

By default, sequences are checked to make sure they contain only valid
characters: a-z, A-Z, * and -. All lowercases letters are translated to their
upper case equivalent. Aligned input is more forgiving: unknown characters are
read as gaps instead of being rejected.
*/
package fasta
