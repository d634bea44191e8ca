// Package review builds the review prompt and runs the linear review
// pipeline: retrieve the diff, build the prompt, ask the model, report.
//
// The diff is opaque text. It is appended to a fixed instruction without
// parsing, escaping or truncation, and the model's reply reaches the
// reporter verbatim. Any stage error aborts the run and later stages are
// never invoked.
package review
