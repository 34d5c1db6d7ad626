package interview

import "fmt"

// buildQuestionPrompt は面接質問生成用のプロンプトを構築する。
func buildQuestionPrompt(level string, count int, topic string) string {
	return fmt.Sprintf(`You are an experienced HR interviewer conducting a %s-level interview.

Generate %d %s-level interview question related to: %s

The question should assess:
- practical application of the topic

Return ONLY the question text, nothing else.`, level, count, level, topic)
}

// buildEvaluationPrompt は評価用の構造化プロンプトを構築する。
// セッションの全コンテキストを埋め込み、固定のmarkdownセクション構成で
// 回答するようモデルに指示する。応答はパースせず不透明テキストとして扱う。
func buildEvaluationPrompt(data SessionData) string {
	return fmt.Sprintf(`You are an expert interview coach providing detailed, professional feedback.

STRUCTURED INTERVIEW SESSION DATA:
Session ID: %s
Topic: %s
Difficulty Level: %s
Timestamp: %s

INTERVIEW QUESTION:
%s

CANDIDATE'S ANSWER (Speech-to-Text):
%s

POSTURE & BODY LANGUAGE DATA:
- Duration: %g seconds
- Stability: %s
- Notes: %s

Please provide structured feedback in the following format:

## Interview Question (Restated)
[Clearly restate the interview question]

## Overall Assessment
[Provide a brief overall evaluation - 2-3 sentences]

## Content Analysis (Answer Quality)
- Relevance: [How well did they address the question?]
- Depth: [Did they provide sufficient detail and examples?]
- Structure: [Was the answer well-organized?]

## Communication Skills
- Clarity: [Was the answer clear and easy to understand?]
- Confidence: [Based on word choice and phrasing]
- Professionalism: [Appropriate language and tone?]

## Body Language & Posture
- Stability: [Comment on their physical presence]
- Engagement: [Based on duration and consistency]

## Strengths
[List 2-3 specific things they did well]

## Areas for Improvement
[List 2-3 specific suggestions for improvement]

## Score
[X]/10

## Ideal HR-Expected Answer
[Return the ideal answer to the interview question as HR expects.
Write it in a professional candidate style.]

## Final Recommendation
[One-sentence summary and encouragement]`,
		data.SessionID,
		data.Topic,
		data.DifficultyLevel,
		data.Timestamp,
		data.QuestionText,
		data.UserTranscription,
		data.PostureData.Duration,
		data.PostureData.Stability,
		data.PostureData.Notes,
	)
}
