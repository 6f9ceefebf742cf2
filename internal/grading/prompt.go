package grading

import (
	"strconv"
	"strings"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// GraderSystemPrompt frames the model as a grading assistant.
const GraderSystemPrompt = "You are an experienced teaching assistant who provides fair and detailed grading. " +
	"Your feedback should be constructive, highlight strengths, and offer suggestions for improvement."

// FeedbackSystemPrompt frames the model for personalised feedback generation.
const FeedbackSystemPrompt = "You are an empathetic, experienced educator who provides personalized, constructive feedback " +
	"to help students improve. Your feedback should be specific, actionable, and encouraging."

// BuildPrompt composes the grading instruction for one submission.
func BuildPrompt(assignment models.Assignment, content string) string {
	points := formatNumber(assignment.TotalPoints)

	builder := strings.Builder{}
	builder.WriteString("I have a student submission for an assignment. Please grade it based on the rubric.\n\n")
	builder.WriteString("ASSIGNMENT TITLE: ")
	builder.WriteString(assignment.Title)
	builder.WriteString("\nASSIGNMENT DESCRIPTION: ")
	builder.WriteString(assignment.Description)
	builder.WriteString("\nTOTAL POINTS: ")
	builder.WriteString(points)
	builder.WriteString("\n\nRUBRIC:\n")
	for _, item := range assignment.Rubric {
		builder.WriteString("- ")
		builder.WriteString(item.Criteria)
		builder.WriteString(" (")
		builder.WriteString(formatNumber(item.Weight))
		builder.WriteString(" points): ")
		builder.WriteString(item.Description)
		builder.WriteString("\n")
	}
	builder.WriteString("\nSTUDENT SUBMISSION:\n")
	builder.WriteString(content)
	builder.WriteString("\n\nPlease provide:\n")
	builder.WriteString("1. A grade out of ")
	builder.WriteString(points)
	builder.WriteString(" points\n")
	builder.WriteString("2. Detailed feedback for the student\n")
	builder.WriteString("3. Scores for each rubric criteria with specific feedback for each\n")
	return builder.String()
}

// BuildFeedbackPrompt asks the model to rewrite existing feedback for a named student.
func BuildFeedbackPrompt(studentName string, assignment models.Assignment, submission models.Submission) string {
	grade := "ungraded"
	if submission.Grade != nil {
		grade = formatNumber(*submission.Grade)
	}

	builder := strings.Builder{}
	builder.WriteString("I need to provide detailed, personalized feedback to a student named ")
	builder.WriteString(studentName)
	builder.WriteString(" on their assignment submission.\n\n")
	builder.WriteString("ASSIGNMENT TITLE: ")
	builder.WriteString(assignment.Title)
	builder.WriteString("\nASSIGNMENT DESCRIPTION: ")
	builder.WriteString(assignment.Description)
	builder.WriteString("\n\nSTUDENT SUBMISSION:\n")
	builder.WriteString(submission.Content)
	builder.WriteString("\n\nCURRENT GRADE: ")
	builder.WriteString(grade)
	builder.WriteString(" out of ")
	builder.WriteString(formatNumber(assignment.TotalPoints))
	builder.WriteString("\n\nCURRENT FEEDBACK:\n")
	builder.WriteString(submission.Feedback)
	builder.WriteString("\n\nPlease generate an improved, personalized feedback that:\n")
	builder.WriteString("1. Addresses the student by name\n")
	builder.WriteString("2. Highlights specific strengths in their submission\n")
	builder.WriteString("3. Provides constructive criticism on areas for improvement\n")
	builder.WriteString("4. Offers specific suggestions to help them enhance their learning\n")
	builder.WriteString("5. Ends with an encouraging note\n")
	return builder.String()
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
