package models

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CandidateScores maps a subject name to the candidate's score in it
type CandidateScores map[string]int

// NewCandidateScores builds scores from raw user input.
// Subject names are trimmed and NFC-normalised, blank names are ignored and
// negative scores are clamped to zero.
func NewCandidateScores(raw map[string]int) CandidateScores {
	scores := make(CandidateScores, len(raw))
	for subject, score := range raw {
		name := NormalizeSubject(subject)
		if name == "" {
			continue
		}
		if score < 0 {
			score = 0
		}
		scores[name] = score
	}
	return scores
}

// Score returns the candidate's score for subject and whether one was given.
func (s CandidateScores) Score(subject string) (int, bool) {
	score, ok := s[subject]
	return score, ok
}

// NormalizeSubject trims a subject name and puts it in Unicode NFC form so that
// composed and decomposed spellings (e.g. "й") compare equal.
func NormalizeSubject(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
