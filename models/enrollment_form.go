package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// EnrollmentForm is a mode of study a programme admits to
type EnrollmentForm int

const (
	FullTime EnrollmentForm = iota
	PartTime
	Correspondence
)

// AllForms lists the enrollment forms in report order.
var AllForms = []EnrollmentForm{FullTime, PartTime, Correspondence}

func (f EnrollmentForm) String() string {
	switch f {
	case FullTime:
		return "Очная форма"
	case PartTime:
		return "Очно-заочная форма"
	case Correspondence:
		return "Заочная форма"
	default:
		return fmt.Sprintf("EnrollmentForm(%d)", int(f))
	}
}

// Key returns the identifier used for the form in request and report payloads.
func (f EnrollmentForm) Key() string {
	switch f {
	case FullTime:
		return "full_time"
	case PartTime:
		return "part_time"
	case Correspondence:
		return "correspondence"
	default:
		return ""
	}
}

// SeatCounts holds the budget-funded and paid seats of one enrollment form
type SeatCounts struct {
	Budget int `json:"budget"`
	Paid   int `json:"paid"`
}

// Total returns budget plus paid seats, saturating at the int range.
func (s SeatCounts) Total() int {
	switch {
	case s.Paid > 0 && s.Budget > math.MaxInt-s.Paid:
		return math.MaxInt
	case s.Paid < 0 && s.Budget < math.MinInt-s.Paid:
		return math.MinInt
	}
	return s.Budget + s.Paid
}

// Describe renders the seat counts the way the admission plan reports them.
func (s SeatCounts) Describe() string {
	return fmt.Sprintf("%d бюджетных, %d платных", s.Budget, s.Paid)
}

// FormPlaces represents the seats available for one enrollment form of a programme
type FormPlaces struct {
	Form        EnrollmentForm `json:"-"`
	FormName    string         `json:"form"`
	Budget      int            `json:"budget"`
	Paid        int            `json:"paid"`
	Description string         `json:"description"`
}

// NewFormPlaces builds the places entry for a form from its seat counts.
func NewFormPlaces(form EnrollmentForm, seats SeatCounts) FormPlaces {
	return FormPlaces{
		Form:        form,
		FormName:    form.String(),
		Budget:      seats.Budget,
		Paid:        seats.Paid,
		Description: seats.Describe(),
	}
}

// EnrollmentFormAvailability lists, in report order, the forms with at least one seat.
// In JSON it is an object mapping the form name to the seat description.
type EnrollmentFormAvailability []FormPlaces

// MarshalJSON writes the forms as {"Очная форма": "25 бюджетных, 10 платных"},
// keeping report order.
func (a EnrollmentFormAvailability) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, p := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(p.FormName); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(p.Description); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object written by MarshalJSON. Seat counts are
// recovered from descriptions in the "N бюджетных, M платных" form.
func (a *EnrollmentFormAvailability) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*a = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("places: expected an object, got %v", tok)
	}

	places := EnrollmentFormAvailability{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)

		var description string
		if err := dec.Decode(&description); err != nil {
			return fmt.Errorf("places %q: %w", name, err)
		}

		p := FormPlaces{Form: -1, FormName: name, Description: description}
		for _, form := range AllForms {
			if form.String() == name {
				p.Form = form
			}
		}
		if _, err := fmt.Sscanf(description, "%d бюджетных, %d платных", &p.Budget, &p.Paid); err != nil {
			p.Budget, p.Paid = 0, 0
		}
		places = append(places, p)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*a = places
	return nil
}
