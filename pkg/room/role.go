package room

import (
	"errors"
	"fmt"
)

// Role is one of the two call parties of a consultation.
type Role string

const (
	Doctor  Role = "doctor"
	Patient Role = "patient"
)

var ErrBadRole = errors.New("bad role")

// ParseRole checks that the role is either doctor or patient.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case Doctor, Patient:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrBadRole, s)
}

func (r Role) String() string { return string(r) }
