package prompt

import (
	"strings"
)

// NotFoundAnswer is the phrase the model is told to use when context lacks the answer.
const NotFoundAnswer = "I don’t know based on the given information."

const groundedAnswerTemplate = "You are an AI assistant answering questions based strictly on the provided context. " +
	"If the answer is not found in the context, say '" + NotFoundAnswer + "'\n\n" +
	"**Context:**\n{context}\n\n" +
	"**User Question:** {question}\n\n" +
	"**Answer:**"

const summaryTemplate = "Summarize the following conversation history concisely:\n\n" +
	"{text}\n\n" +
	"**Summary:**"

const retrievalTemplate = "You are an AI deciding if new information needs to be retrieved from a database to answer a question. " +
	"Given the current question and conversation history, respond with 'YES' if new retrieval is needed, " +
	"or 'NO' if the existing context is sufficient.\n\n" +
	"**Conversation History:**\n{history}\n\n" +
	"**Current Question:** {current_question}\n\n" +
	"**Response:** YES or NO"

// fill substitutes {name} placeholders in a single pass, so values that
// themselves contain braces are left untouched.
func fill(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// GroundedAnswer builds the answer-generation prompt.
func GroundedAnswer(context, question string) string {
	return fill(groundedAnswerTemplate, map[string]string{
		"context":  context,
		"question": question,
	})
}

// Summary builds the history summarization prompt.
func Summary(transcript string) string {
	return fill(summaryTemplate, map[string]string{"text": transcript})
}

// RetrievalDecision builds the YES/NO retrieval classification prompt.
func RetrievalDecision(transcript, question string) string {
	return fill(retrievalTemplate, map[string]string{
		"history":          transcript,
		"current_question": question,
	})
}

// CombinedContext joins the rolling summary with the passage texts.
func CombinedContext(summary string, passageTexts []string) string {
	var b strings.Builder
	b.WriteString("Previous Summary: ")
	b.WriteString(summary)
	b.WriteString("\n\nCurrent Context: ")
	b.WriteString(strings.Join(passageTexts, "\n\n"))
	return b.String()
}
