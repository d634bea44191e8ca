// Package output delivers review results. Each reporter implements
// [review.Reporter]:
//   - console: the label line followed by the model's text (default)
//   - json: one JSON object for machine consumption
//   - github: a pull request comment, echoed to the console
//
// Use [New] to build the reporter selected by configuration.
package output
