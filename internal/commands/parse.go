package commands

import "strings"

// splitExpert splits an ask message of the form "Expert - Question" on the
// first '-'. The expert name comes back lowercased and trimmed. ok is false
// when the message has no '-' or either side is empty.
func splitExpert(message string) (expert, question string, ok bool) {
	before, after, found := strings.Cut(message, "-")
	if !found {
		return "", "", false
	}
	expert = strings.ToLower(strings.TrimSpace(before))
	question = strings.TrimSpace(after)
	if expert == "" || question == "" {
		return "", "", false
	}
	return expert, question, true
}

// splitAction splits "action params" on the first space. A bare action has
// empty params.
func splitAction(text string) (action, params string) {
	before, after, found := strings.Cut(strings.TrimSpace(text), " ")
	action = strings.ToLower(strings.TrimSpace(before))
	if !found {
		return action, ""
	}
	return action, strings.TrimSpace(after)
}

// splitIssue splits "title -- description" on the first literal " -- ". ok is
// false when the separator is missing or either side is empty.
func splitIssue(params string) (title, description string, ok bool) {
	before, after, found := strings.Cut(params, " -- ")
	if !found {
		return "", "", false
	}
	title = strings.TrimSpace(before)
	description = strings.TrimSpace(after)
	if title == "" || description == "" {
		return "", "", false
	}
	return title, description, true
}
