// Package shared groups helpers used by more than one package.
//
// The testutil subpackage captures slog records for assertions and renders
// plate-reader and transfer-log fixtures for pipeline and command tests.
package shared
