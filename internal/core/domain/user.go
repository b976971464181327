package domain

// User is a staff member who records transactions. Only authenticated users may
// create or reverse transactions; the user ID flows into createdBy provenance.
type User struct {
	UserID       string `json:"userID"` // Primary key (UUID)
	Username     string `json:"username"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	AuditFields
}
