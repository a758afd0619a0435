// Package hits fits dose-response curves per compound and classifies each
// compound as active, inactive or inconclusive.
//
// Replicates sharing a concentration are averaged before a four-parameter
// logistic is fitted with a Levenberg-Marquardt solver. A compound whose fit
// fails keeps NaN parameters and ends up inconclusive; it never aborts the
// batch. Classification compares the fit and the raw per-compound values
// against Thresholds, whose defaults reproduce the established hit rules.
package hits
