package models

// DefaultUnit groups programmes whose administrative unit is not given.
const DefaultUnit = "Прочее"

// AdministrativeGroup represents the matched programmes of one institute or faculty
type AdministrativeGroup struct {
	Name     string         `json:"uchp_name"`
	Programs []ProgramEntry `json:"directions"`
}
