package models

import "fmt"

// SubjectRequirement represents one "subject - minimum score" pair of an admission rule
type SubjectRequirement struct {
	Subject  string `json:"subject"`
	MinScore int    `json:"min_score"`
}

func (r SubjectRequirement) String() string {
	return fmt.Sprintf("%s - %d", r.Subject, r.MinScore)
}
