package models

import "strings"

// QualificationVariant is one sufficient way to qualify: every requirement must be met
type QualificationVariant []SubjectRequirement

func (v QualificationVariant) String() string {
	parts := make([]string, len(v))
	for i, r := range v {
		parts[i] = r.String()
	}
	return strings.Join(parts, "; ")
}
