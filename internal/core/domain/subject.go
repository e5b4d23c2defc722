package domain

// SubjectConversionDifference is the reserved subject code that
// exchange-difference correction mutations are booked under.
const SubjectConversionDifference = "CONVERSION_DIFFERENCE"

// Subject categorizes mutations (groceries, salary, ...). Reserved subjects
// are created by migrations and cannot be removed by users.
type Subject struct {
	SubjectID string `json:"subjectID"` // Primary Key (e.g., UUID)
	Code      string `json:"code"`      // Unique short code
	Name      string `json:"name"`      // Display name
	Reserved  bool   `json:"reserved"`  // System subject, not user-editable
	AuditFields
}
