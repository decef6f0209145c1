// Package dataset provides the in-memory mesh datasets randcells samples
// from and the cell copiers that build a sampled output.
//
// Two shapes are supported:
//   - PolyData: points plus a cell array of polygonal cells
//   - UnstructuredGrid: points plus a cell array and a per-cell type
//
// Both carry point and cell attributes as named arrays of fixed-width tuples.
// A copier appends cells of a source dataset to an output dataset of the
// same shape, re-indexing points so the output stays compact.
package dataset
