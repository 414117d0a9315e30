// Package align implements the alignment core: turning a similarity matrix into a
// normalized cost matrix, searching it for a minimum-cost monotonic path, grouping
// the path into blocks, and stitching per-window paths into one global path.
//
// Matrices are indexed [row][column] where rows are right-sequence units and
// columns are left-sequence units. Path points carry (Left, Right) = (column, row).
//
// The search is a local alignment: a path may start anywhere on the first row or
// column (when flexible start is requested) and ends on the first cell of the last
// row or last column that can be reached at minimal cost. It does not need to
// consume either sequence end to end.
package align
