// Package plate reads 384-well plate-reader exports and computes per-plate
// quality statistics.
//
// A plate is a 16x24 grid. Columns 1-22 hold compounds, column 23 the
// negative control and column 24 the positive control. Assess derives the
// Z-factor from the controls twice: once on the raw readings and once with
// up to two gross outliers per control column removed. The removed wells are
// recorded in a mask grid stacked next to the readings (see Tensor).
//
// ParseBatch fans parsing and assessment out over a bounded worker pool.
// A file that fails to parse is reported in Batch.Failed and never aborts
// the batch.
package plate
