// Package redact scrubs likely secrets from a diff before it leaves the
// machine. It is opt-in: by default the diff is sent verbatim.
package redact

import "regexp"

// Placeholder replaces every detected secret.
const Placeholder = "[REDACTED]"

// patterns are regex heuristics for common secret shapes.
var patterns = []*regexp.Regexp{
	// key/secret assignments with a long value
	regexp.MustCompile(`(?i)(api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`),
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`),
	regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`),
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
	regexp.MustCompile(`-----BEGIN\s+([A-Z]+\s+)?PRIVATE KEY-----`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`),
	regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`),
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	// Google API keys, the credential this tool itself uses
	regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`),
}

// Secrets replaces detected secrets in text with [Placeholder] and reports
// how many replacements were made.
func Secrets(text string) (string, int) {
	n := 0
	for _, pat := range patterns {
		text = pat.ReplaceAllStringFunc(text, func(string) string {
			n++
			return Placeholder
		})
	}
	return text, n
}
