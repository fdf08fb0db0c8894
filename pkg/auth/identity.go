package auth

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// Identity is the already-authenticated caller handed to the scheduling
// core by the API layer. DoctorID/PatientID link the account to its
// clinical record for the matching role.
type Identity struct {
	UserID    uuid.UUID
	Role      Role
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// ActsForDoctor reports whether the identity is the given doctor.
func (id Identity) ActsForDoctor(doctorID uuid.UUID) bool {
	return id.Role == RoleDoctor && id.DoctorID != nil && *id.DoctorID == doctorID
}

// ActsForPatient reports whether the identity is the given patient.
func (id Identity) ActsForPatient(patientID uuid.UUID) bool {
	return id.Role == RolePatient && id.PatientID != nil && *id.PatientID == patientID
}
