package hint

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizplay/internal/quiz"
)

const systemPrompt = `You are a quiz coach. A learner is stuck on a question and asked for a hint. Give one short sentence that points them toward the reasoning. Never state the answer, never name the correct option and never pair the terms for them.`

// buildUserMessage describes q without its answer key.
func buildUserMessage(q quiz.Question) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Question type: %s\n", q.Kind().Title())
	fmt.Fprintf(&b, "Question: %s\n", q.Prompt())

	switch q := q.(type) {
	case *quiz.MultipleChoice:
		b.WriteString("\nOptions:\n")
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
	case *quiz.TrueFalse:
		b.WriteString("\nThe learner must answer true or false.\n")
	case *quiz.Matching:
		b.WriteString("\nTerms:\n")
		for _, t := range q.Terms() {
			fmt.Fprintf(&b, "- %s\n", t)
		}
		b.WriteString("\nDefinitions (shuffled):\n")
		for _, d := range q.Definitions() {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	case *quiz.FillBlank:
		b.WriteString("\nThe learner must type the missing word or phrase.\n")
	}

	b.WriteString("\nReply with the hint only.")
	return b.String()
}
