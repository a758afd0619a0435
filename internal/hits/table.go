package hits

import (
	"strconv"
)

// Columns is the header of a rendered hit table
var Columns = []string{
	"EOS", "TOP", "BOTTOM", "ic50", "slope", "r2", "operator",
	"activity_final", "is_partially_active",
	"min_concentration", "max_concentration", "modulation_ic50", "concentration_50",
	"min_value", "max_value", "mean_value",
	"all_conc_active", "all_conc_inactive", "is_reverse_dose", "is_active",
}

// Strings renders the call aligned with Columns
func (c HitCall) Strings() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	b := strconv.FormatBool

	return []string{
		c.CompoundID, f(c.Upper), f(c.Lower), f(c.IC50), f(c.Slope), f(c.R2), string(c.Operator),
		string(c.ActivityFinal), b(c.IsPartiallyActive),
		f(c.MinConcentration), f(c.MaxConcentration), f(c.ModulationIC50), f(c.Concentration50),
		f(c.MinValue), f(c.MaxValue), f(c.MeanValue),
		b(c.AllConcActive), b(c.AllConcInactive), b(c.IsReverseDose), b(c.IsActive),
	}
}
