package grading

import (
	"strings"

	"github.com/noah-isme/edusphere-api/internal/models"
)

// ValidateRubric checks that criteria labels are present and unique
// (case-insensitively) and that weights are not negative.
func ValidateRubric(rubric []models.RubricItem) error {
	seen := make(map[string]struct{}, len(rubric))
	for i, item := range rubric {
		label := strings.TrimSpace(item.Criteria)
		if label == "" {
			return invalid("rubric", "criteria %d is empty", i+1)
		}
		if item.Weight < 0 {
			return invalid("rubric", "criteria %q has a negative weight", label)
		}
		key := strings.ToLower(label)
		if _, ok := seen[key]; ok {
			return invalid("rubric", "criteria %q is duplicated", label)
		}
		seen[key] = struct{}{}
	}
	return nil
}
