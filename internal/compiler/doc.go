// Package compiler turns CUE source into IR documents.
//
// CUE is the authoring front end: humans and agents write documents as
// CUE structs, which unify against constraints before this package ever
// sees them. The compiler walks the evaluated cue.Value with the Go API
// (never a CLI subprocess), maps fields onto ir types, and reports
// every problem with its source position.
//
// The output of a successful compile is always a validated, normalized
// ir.Document.
package compiler
