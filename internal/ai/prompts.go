package ai

import (
	"context"
	"fmt"
)

const symptomCheckerPrompt = `You are a certified AI medical assistant. Analyze symptoms and provide:
1. Top 3 possible causes with confidence levels
2. Severity assessment (Low/Medium/High)
3. Recommended action (Home Care/Doctor Visit/Emergency Room)
4. Warning signs to watch for

Be thorough but never replace professional medical advice. Always recommend consulting healthcare providers for serious concerns.`

const mentalHealthPrompt = `You are a compassionate CBT therapist assistant. Provide:
1. Empathetic response to the user's feelings
2. CBT-based coping strategies
3. Helpful reflection questions
4. When to seek professional help

Use a warm, supportive tone. Focus on cognitive behavioral techniques.`

const consultationSummaryPrompt = `Summarize this medical consultation into structured format:

CHIEF COMPLAINT:
HISTORY OF PRESENT ILLNESS:
CLINICAL IMPRESSION:
RECOMMENDATIONS:
FOLLOW-UP:

Be concise and medically accurate.`

const educationalContentPrompt = `Provide educational medical content that is:
1. Accurate and evidence-based
2. Easy to understand for patients
3. Includes prevention tips
4. When to seek medical care

Structure with clear headings and bullet points.`

const triagePrompt = `You are a medical triage AI. Based on symptoms and vitals, determine:
1. Urgency level (Emergency/Urgent/Routine)
2. Recommended care setting (ER/Urgent Care/Primary Care/Self Care)
3. Time sensitivity
4. Red flag symptoms present

Prioritize patient safety - when in doubt, recommend higher level of care.`

// SymptomChecker analyzes free-text symptoms.
func (c *Client) SymptomChecker(ctx context.Context, symptoms string) string {
	return c.CompleteOrFallback(ctx, []Message{
		{Role: "system", Content: symptomCheckerPrompt},
		{Role: "user", Content: "Patient reports these symptoms: " + symptoms},
	})
}

// MentalHealthAssistant responds to a chat message, optionally carrying the
// user's self-reported 1-5 mood level.
func (c *Client) MentalHealthAssistant(ctx context.Context, userMessage string, moodLevel int) string {
	content := "User says: " + userMessage
	if moodLevel > 0 {
		content = fmt.Sprintf("Current mood level: %d/5\n\nUser says: %s", moodLevel, userMessage)
	}
	return c.CompleteOrFallback(ctx, []Message{
		{Role: "system", Content: mentalHealthPrompt},
		{Role: "user", Content: content},
	})
}

// ConsultationSummary produces a structured summary of a consultation transcript.
func (c *Client) ConsultationSummary(ctx context.Context, consultation string) string {
	return c.CompleteOrFallback(ctx, []Message{
		{Role: "system", Content: consultationSummaryPrompt},
		{Role: "user", Content: "Consultation transcript: " + consultation},
	})
}

// EducationalContent generates patient-facing content about a topic.
func (c *Client) EducationalContent(ctx context.Context, topic string) string {
	return c.CompleteOrFallback(ctx, []Message{
		{Role: "system", Content: educationalContentPrompt},
		{Role: "user", Content: "Create educational content about: " + topic},
	})
}

// TriageAssessment assesses urgency from symptoms and an optional vitals summary.
func (c *Client) TriageAssessment(ctx context.Context, symptoms, vitalsSummary string) string {
	content := "Symptoms: " + symptoms
	if vitalsSummary != "" {
		content += "\nVital signs: " + vitalsSummary
	}
	return c.CompleteOrFallback(ctx, []Message{
		{Role: "system", Content: triagePrompt},
		{Role: "user", Content: content},
	})
}
