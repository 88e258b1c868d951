package models

// ProgramRow represents one validated line of the admission plan
type ProgramRow struct {
	Line     int                           `json:"line"`
	Unit     string                        `json:"unit"`
	Code     string                        `json:"code"`
	Name     string                        `json:"name"`
	ExamText string                        `json:"exam_text"`
	Seats    map[EnrollmentForm]SeatCounts `json:"-"`
}

// SeatsFor returns the seats of a form; a form missing from the row has none.
func (r ProgramRow) SeatsFor(form EnrollmentForm) SeatCounts {
	return r.Seats[form]
}
