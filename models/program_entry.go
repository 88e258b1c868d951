package models

// ProgramEntry represents a programme the candidate qualifies for
type ProgramEntry struct {
	Code   string                     `json:"code"`
	Name   string                     `json:"program"`
	Exams  string                     `json:"exams"`
	Places EnrollmentFormAvailability `json:"places"`
}
