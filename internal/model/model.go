package model

// Contact is the data structure for a stored contact record. ContactID is the
// natural key; all other fields are optional and represented as pointers so
// that a missing value and an empty string stay distinguishable.
type Contact struct {
	ContactID          int64   `json:"contact_id"                     db:"contact_id"`
	FirstName          *string `json:"first_name,omitempty"           db:"first_name"`
	LastName           *string `json:"last_name,omitempty"            db:"last_name"`
	EmailAddress       *string `json:"email_address,omitempty"        db:"email_address"`
	Phone              *string `json:"phone,omitempty"                db:"phone"`
	Program            *string `json:"program,omitempty"              db:"program"`
	LawFirmName        *string `json:"law_firm_name,omitempty"        db:"law_firm_name"`
	LawFirmID          *int64  `json:"law_firm_id,omitempty"          db:"law_firm_id"`
	ContactCreatedDate *string `json:"contact_created_date,omitempty" db:"contact_created_date"`
}

// Client is the data structure for a client registry entry. ID is an internal
// surrogate row id assigned by the database; ClientID is the natural key.
type Client struct {
	ID         int64   `json:"id"                    db:"id"`
	ClientID   int64   `json:"client_id"             db:"client_id"`
	ClientName *string `json:"client_name,omitempty" db:"client_name"`
}

// ImportSummary is the result of one bulk CSV import call.
// TotalRecords is always Inserted + Updated + Skipped.
type ImportSummary struct {
	TotalRecords int      `json:"totalRecords"`
	Inserted     int      `json:"inserted"`
	Updated      int      `json:"updated"`
	Skipped      int      `json:"skipped"`
	Errors       []string `json:"errors"`
}

// ContactPage is the response envelope for paginated contact listings.
type ContactPage struct {
	Data       []Contact `json:"data"`
	TotalCount int64     `json:"totalCount"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
}

// ClientPage is the response envelope for paginated client listings.
type ClientPage struct {
	Data       []Client `json:"data"`
	TotalCount int64    `json:"totalCount"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
}
