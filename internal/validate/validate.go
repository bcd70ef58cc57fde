// Package validate decides import-eligibility of sanitized records and
// produces human-readable defect lists.
//
// The contract has two phases. Phase one checks that every required field is
// present and stops immediately when one is missing, so an incomplete record
// never produces confusing format errors on top of the missing-field ones.
// Phase two runs the format checks and accumulates every defect it finds.
package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cconley717/contact-keeper-manager/internal/model"
	"github.com/cconley717/contact-keeper-manager/internal/sanitize"
)

// ContactResult is the outcome of validating one contact record.
type ContactResult struct {
	IsValid bool
	Errors  []string
	Contact model.Contact
}

// ClientResult is the outcome of validating one client record.
type ClientResult struct {
	IsValid bool
	Errors  []string
	Client  model.Client
}

// contactRequired lists the contact fields that must be present, in report
// order.
var contactRequired = []struct {
	name string
	get  func(model.ContactInput) string
}{
	{"contact_id", func(in model.ContactInput) string { return in.ContactID }},
	{"first_name", func(in model.ContactInput) string { return in.FirstName }},
	{"last_name", func(in model.ContactInput) string { return in.LastName }},
	{"contact_created_date", func(in model.ContactInput) string { return in.ContactCreatedDate }},
}

// Contact sanitizes and validates one contact record.
func Contact(in model.ContactInput) ContactResult {
	var missing []string
	for _, f := range contactRequired {
		if strings.TrimSpace(f.get(in)) == "" {
			missing = append(missing, fmt.Sprintf("missing required field: %s", f.name))
		}
	}
	if len(missing) > 0 {
		return ContactResult{IsValid: false, Errors: missing}
	}

	var errs []string
	var contact model.Contact

	id, ok := sanitize.Integer(in.ContactID)
	if !ok {
		errs = append(errs, fmt.Sprintf("contact_id must be a positive integer, got '%s'", strings.TrimSpace(in.ContactID)))
	}
	contact.ContactID = id

	if raw, ok := sanitize.Date(in.ContactCreatedDate); !ok || !CalendarDate(raw) {
		errs = append(errs, fmt.Sprintf("contact_created_date must be a real MM/DD/YYYY date, got '%s'", strings.TrimSpace(in.ContactCreatedDate)))
	} else {
		contact.ContactCreatedDate = &raw
	}

	if strings.TrimSpace(in.LawFirmID) != "" {
		firmID, ok := sanitize.Integer(in.LawFirmID)
		if !ok {
			errs = append(errs, fmt.Sprintf("law_firm_id must be a positive integer, got '%s'", strings.TrimSpace(in.LawFirmID)))
		} else {
			contact.LawFirmID = &firmID
		}
	}

	contact.FirstName = optString(in.FirstName)
	contact.LastName = optString(in.LastName)
	contact.Phone = optPhone(in.Phone)
	contact.Program = optString(in.Program)
	contact.LawFirmName = optString(in.LawFirmName)
	if email, ok := sanitize.Email(in.EmailAddress); ok {
		contact.EmailAddress = &email
	}

	return ContactResult{IsValid: len(errs) == 0, Errors: errs, Contact: contact}
}

// Client sanitizes and validates one client record.
func Client(in model.ClientInput) ClientResult {
	if strings.TrimSpace(in.ClientID) == "" {
		return ClientResult{IsValid: false, Errors: []string{"missing required field: client_id"}}
	}

	var errs []string
	var client model.Client

	id, ok := sanitize.Integer(in.ClientID)
	if !ok {
		errs = append(errs, fmt.Sprintf("client_id must be a positive integer, got '%s'", strings.TrimSpace(in.ClientID)))
	}
	client.ClientID = id
	client.ClientName = optString(in.ClientName)

	return ClientResult{IsValid: len(errs) == 0, Errors: errs, Client: client}
}

// CalendarDate reports whether s, already matching the M/D/YYYY shape, names
// a real calendar date. February is bounded by the leap-year rule, the other
// months by their fixed day counts.
func CalendarDate(s string) bool {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return false
	}
	month, _ := strconv.Atoi(parts[0])
	day, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return false
	}
	return day <= daysInMonth(month, year)
}

func daysInMonth(month, year int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// optString applies sanitize.String and lifts the result into the model's
// pointer-typed optionality.
func optString(raw string) *string {
	if s, ok := sanitize.String(raw); ok {
		return &s
	}
	return nil
}

func optPhone(raw string) *string {
	if s, ok := sanitize.Phone(raw); ok {
		return &s
	}
	return nil
}
