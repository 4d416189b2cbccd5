package services

import "quizolute/internal/models"

const flashcardsPrompt = `You are an expert educational content creator. Generate flashcards from the provided text.

Rules:
1. Create 5-10 flashcards based on the key concepts
2. Each flashcard should have a clear question and concise answer
3. Focus on the most important information

Output format (JSON array):
[
  {"question": "What is...?", "answer": "..."},
  {"question": "How does...?", "answer": "..."}
]

Return ONLY the JSON array, no other text.`

const summaryPrompt = `You are an expert summarizer. Create a clear, concise summary.

Rules:
1. Capture the main ideas and key points
2. Keep the summary to 3-5 paragraphs
3. Use bullet points for key takeaways

Format:
## Summary
[Your summary]

## Key Takeaways
- Point 1
- Point 2
- Point 3`

const quizPrompt = `You are an expert quiz creator. Generate a quiz from the provided text.

Rules:
1. Create 5 multiple choice questions
2. Each question should have 4 options (A, B, C, D)
3. Include the correct answer

Output format (JSON array):
[
  {
    "question": "What is...?",
    "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
    "correct": "A",
    "explanation": "Brief explanation"
  }
]

Return ONLY the JSON array.`

const chatPromptHead = "You are Quizolute, a helpful AI study buddy. You help students learn and understand their study materials.\n\n"

const chatPromptTail = "\n\nBe friendly, encouraging, and educational. Keep responses concise but helpful. Use plain text without markdown formatting - avoid using asterisks (*), hashtags (#), or other markdown symbols."

const researchPrompt = "You are a helpful research assistant. Based on the search results provided, give a clear, educational answer to the user's question. Be concise but informative. If the information is incomplete, say so."

const (
	visionPromptTextOnly = "Extract all text from this image. Return only the text content."
	visionPromptDefault  = "Extract all text from this image."
)

func systemPromptFor(mode models.Mode) string {
	switch mode {
	case models.ModeFlashcards:
		return flashcardsPrompt
	case models.ModeQuiz:
		return quizPrompt
	default:
		return summaryPrompt
	}
}

func visionPromptFor(mode models.Mode) string {
	if mode == models.ModeFlashcards {
		return visionPromptTextOnly
	}
	return visionPromptDefault
}

func chatSystemPrompt(documentContext string) string {
	prompt := chatPromptHead
	if documentContext != "" {
		prompt += "Context from uploaded documents:\n" + documentContext + "\n\n"
	}
	return prompt + chatPromptTail
}

func researchUserPrompt(query, searchContext string) string {
	return "User searched for: \"" + query + "\"\n\nSearch results:\n" + searchContext +
		"\n\nProvide a helpful, well-organized answer based on this information."
}
