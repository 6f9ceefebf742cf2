package grading

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// space matches Unicode spacing as well as ASCII whitespace; models often emit
// no-break spaces between a label and its number.
const space = `[\s\p{Zs}\x{FEFF}\x{2028}\x{2029}]`

var overallGradePattern = regexp.MustCompile(`(?i)grade:?` + space + `*(\d+\.?\d*)`)

const criterionScoreSuffix = `[^:]*:?` + space + `*(\d+\.?\d*)` + space + `*(?:points|point|pts|pt)?`

// Extraction is the structured, possibly partial, reading of a model response.
type Extraction struct {
	OverallGrade *float64
	Feedback     string
	RubricGrades []models.RubricGrade
	// OutOfRange reports an overall grade above the assignment total. The grade is kept as parsed.
	OutOfRange bool
}

// Extract parses a free-text grading response against the assignment rubric.
//
// Matching is deliberately loose: criterion labels are matched as plain
// substrings without word boundaries, the first numeric match wins, and
// criteria without a score are left out rather than reported empty.
func Extract(response string, rubric []models.RubricItem, totalPoints float64) Extraction {
	result := Extraction{
		Feedback:     response,
		RubricGrades: make([]models.RubricGrade, 0, len(rubric)),
	}

	if grade, ok := firstNumber(overallGradePattern, response); ok {
		result.OverallGrade = &grade
		result.OutOfRange = totalPoints > 0 && grade > totalPoints
	}

	if len(rubric) == 0 {
		return result
	}

	var sentences []string
	for _, item := range rubric {
		label := item.Criteria
		if strings.TrimSpace(label) == "" {
			continue
		}

		pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(label) + criterionScoreSuffix)
		if err != nil {
			continue
		}

		score, ok := firstNumber(pattern, response)
		if !ok {
			continue
		}

		if sentences == nil {
			sentences = splitSentences(response)
		}

		result.RubricGrades = append(result.RubricGrades, models.RubricGrade{
			Criteria: label,
			Score:    score,
			Feedback: sentencesMentioning(sentences, label),
		})
	}

	return result
}

func firstNumber(pattern *regexp.Regexp, text string) (float64, bool) {
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return 0, false
	}

	value, err := strconv.ParseFloat(strings.TrimSuffix(match[1], "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func sentencesMentioning(sentences []string, label string) string {
	needle := strings.ToLower(label)
	relevant := make([]string, 0)
	for _, sentence := range sentences {
		if strings.Contains(strings.ToLower(sentence), needle) {
			relevant = append(relevant, sentence)
		}
	}
	return strings.Join(relevant, " ")
}
