package review

// Instruction precedes the diff in every prompt.
const Instruction = "You're a code reviewer. Review this code diff and give concise feedback:\n\n"

// BuildPrompt returns the prompt for diff. The diff is appended unchanged, so
// an empty diff yields exactly [Instruction].
func BuildPrompt(diff string) string {
	return Instruction + diff
}
