package rag

import "fmt"

// Prompt templates for the assistant's LLM calls. Context passages
// carry [reference:n] markers so the model can cite which search
// result or scraped page an answer came from.

const serpAnalysisTemplate = `You are a technical support assistant. Use the search results below to answer the user's question about their device or software.

Search results:
%s

Question: %s

Answer the question using only the search results. Cite every fact with the marker of the result it came from, written exactly as [reference:n]. If the search results do not contain the answer, say that you could not find the answer. Do not invent information.`

const retrievalQATemplate = `You are a technical support assistant. Use the following passages scraped from support sites to answer the user's question.

Passages:
%s

Question: %s

Answer using only the passages. Keep the [reference:n] markers from the passages next to the facts they support. If the passages do not contain the answer, say that you could not find the answer.`

const condensedQuestionTemplate = `Given the conversation so far and a follow-up question, rephrase the follow-up into a single standalone question that preserves all context needed to answer it. Reply with the standalone question only.

Conversation:
%s

Follow-up question: %s

Standalone question:`

const relatedQuestionsTemplate = `Based on the user's question, suggest related questions they might ask next about the same device, software or problem.

Question: %s

Reply with a JSON object of the form {"related_queries": ["...", "..."]} containing exactly %d questions and nothing else.`

const summaryTemplate = `Progressively summarize the conversation below, building on the current summary.

Current summary:
%s

New lines of conversation:
%s

New summary:`

func SerpAnalysisPrompt(context, question string) string {
	return fmt.Sprintf(serpAnalysisTemplate, context, question)
}

func RetrievalQAPrompt(passages, question string) string {
	return fmt.Sprintf(retrievalQATemplate, passages, question)
}

func CondensedQuestionPrompt(history, question string) string {
	return fmt.Sprintf(condensedQuestionTemplate, history, question)
}

func RelatedQuestionsPrompt(question string, count int) string {
	return fmt.Sprintf(relatedQuestionsTemplate, question, count)
}

func SummaryPrompt(currentSummary, newLines string) string {
	return fmt.Sprintf(summaryTemplate, currentSummary, newLines)
}
