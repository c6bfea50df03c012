package student

import "strings"

// Student is the identity handed to the marking and reporting services.
// Records snapshot these fields at mark time; nothing holds a live
// reference back to a Student after that.
type Student struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	FirstName     string `json:"firstName,omitempty"`
	LastName      string `json:"lastName,omitempty"`
	MiddleInitial string `json:"middleInitial,omitempty"`
	Email         string `json:"email,omitempty"`
}

// DisplayName returns Name, or a best-effort assembly from the name parts.
func (s Student) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	parts := []string{}
	if s.FirstName != "" {
		parts = append(parts, s.FirstName)
	}
	if s.MiddleInitial != "" {
		parts = append(parts, s.MiddleInitial+".")
	}
	if s.LastName != "" {
		parts = append(parts, s.LastName)
	}
	return strings.Join(parts, " ")
}
