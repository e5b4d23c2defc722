package models

// Subject represents a mutation subject row.
type Subject struct {
	SubjectID string `db:"subject_id"`
	Code      string `db:"code"`
	Name      string `db:"name"`
	Reserved  bool   `db:"reserved"`
	AuditFields
}
