// Package combine merges plate readings with transfer records into one
// per-compound table of % activation, % inhibition and Z-score.
//
// Metrics are derived per plate from that plate's quality statistics.
// Control wells flagged as outliers are left out of the derived metrics, and
// the transfer log drives the join: every transfer row is kept, with null
// metrics when no reading matches its destination well.
package combine
