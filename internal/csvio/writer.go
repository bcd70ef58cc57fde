package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html"
	"time"

	"github.com/cconley717/contact-keeper-manager/internal/model"
)

// ContactColumns is the header of contact CSV files, both imported and
// exported. Matching is case-sensitive.
var ContactColumns = []string{
	"contact_id", "first_name", "last_name", "email_address", "phone",
	"program", "law_firm_name", "law_firm_id", "contact_created_date",
}

// ClientColumns is the header of client CSV files.
var ClientColumns = []string{"client_id", "client_name"}

// ContactsCSV serializes contacts to a CSV buffer: UTF-8 BOM prefix, CRLF
// line endings, RFC4180 quoting. The caller supplies the rows already ordered
// by natural key.
func ContactsCSV(contacts []model.Contact) ([]byte, error) {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ContactID),
			exportString(c.FirstName),
			exportString(c.LastName),
			exportString(c.EmailAddress),
			exportString(c.Phone),
			exportString(c.Program),
			exportString(c.LawFirmName),
			exportInt(c.LawFirmID),
			exportString(c.ContactCreatedDate),
		})
	}
	return writeCSV(ContactColumns, rows)
}

// ClientsCSV serializes clients to a CSV buffer in the same format.
func ClientsCSV(clients []model.Client) ([]byte, error) {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ClientID),
			exportString(c.ClientName),
		})
	}
	return writeCSV(ClientColumns, rows)
}

// Filename generates the attachment filename for an export taken at the
// given instant, unique to the millisecond.
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-export-%s-%03d.csv",
		prefix, now.Format("2006-01-02_15-04-05"), now.Nanosecond()/int(time.Millisecond))
}

func writeCSV(header []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// exportString undoes the sanitizer's HTML escaping so that spreadsheets show
// the original text and a later re-import sanitizes back to the stored form.
func exportString(s *string) string {
	if s == nil {
		return ""
	}
	return html.UnescapeString(*s)
}

func exportInt(n *int64) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}
