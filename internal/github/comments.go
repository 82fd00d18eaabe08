package github

import "fmt"

// AcknowledgementComment is posted once when the issue author answers a request
// for information. label is the waiting label that was just removed.
func AcknowledgementComment(label string) string {
	return fmt.Sprintf("Thanks for the update! I've removed the '%s' label. The team will review this shortly.", label)
}

// TriageQuestionComment greets the issue author and asks for the missing information.
func TriageQuestionComment(login, question string) string {
	return fmt.Sprintf("Hi @%s, thanks for opening this issue! \n\n%s\n\n*Determined by Gemini Triage AI*", login, question)
}
