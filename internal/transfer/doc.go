// Package transfer parses liquid-handler transfer logs.
//
// A transfer export is CSV text optionally split into an [EXCEPTIONS] block
// (transfers the instrument reported as failed) and a [DETAILS] block (the
// transfers performed). Parse concatenates any number of exports into one
// transfer table and one exceptions table; RetainKeyColumns narrows both to
// the columns downstream analysis relies on, and Records converts the
// transfer table into typed records.
package transfer
