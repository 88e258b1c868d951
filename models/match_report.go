package models

// RequestedForms echoes which enrollment forms were asked for
type RequestedForms struct {
	FullTime       bool `json:"full_time"`
	PartTime       bool `json:"part_time"`
	Correspondence bool `json:"correspondence"`
}

// MatchReport is the result of one evaluation pass
type MatchReport struct {
	Scores  CandidateScores       `json:"scores"`
	Forms   RequestedForms        `json:"forms"`
	Results []AdministrativeGroup `json:"results"`
}

// ProgramCount returns the number of programmes across all groups.
func (r MatchReport) ProgramCount() int {
	n := 0
	for _, g := range r.Results {
		n += len(g.Programs)
	}
	return n
}
