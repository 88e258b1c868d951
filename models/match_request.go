package models

// MatchRequest holds a candidate's scores and the search options
type MatchRequest struct {
	Scores         CandidateScores `json:"scores"`
	FullTime       bool            `json:"full_time"`
	PartTime       bool            `json:"part_time"`
	Correspondence bool            `json:"correspondence"`
	IncludeExtra   bool            `json:"include_extra"`
}

// Forms returns the requested enrollment forms in report order.
func (r MatchRequest) Forms() []EnrollmentForm {
	var forms []EnrollmentForm
	if r.FullTime {
		forms = append(forms, FullTime)
	}
	if r.PartTime {
		forms = append(forms, PartTime)
	}
	if r.Correspondence {
		forms = append(forms, Correspondence)
	}
	return forms
}
