/*
Package newick provides facilities for reading and writing trees in the
Newick format. The format used is roughly equivalent to the conventions
established here:
http://evolution.genetics.washington.edu/phylip/newick_doc.html. Quoted labels
are supported in both directions, but comments are not (yet) implemented.

An informal description of the Newick format can be found here:
http://evolution.genetics.washington.edu/phylip/newicktree.html.

The Tree type doubles as the tree representation produced by the tree
builders in this module, so a tree can be written without any conversion.
*/
package newick
