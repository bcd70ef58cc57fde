package model

// ContactInput is one raw, untrusted contact record as it arrives from a CSV
// row or a JSON request body. All fields are strings; sanitization and
// validation happen downstream.
type ContactInput struct {
	ContactID          string `json:"contact_id"`
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	EmailAddress       string `json:"email_address"`
	Phone              string `json:"phone"`
	Program            string `json:"program"`
	LawFirmName        string `json:"law_firm_name"`
	LawFirmID          string `json:"law_firm_id"`
	ContactCreatedDate string `json:"contact_created_date"`
}

// ClientInput is one raw, untrusted client record.
type ClientInput struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
}
