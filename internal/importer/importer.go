// Package importer drives bulk CSV imports: parse, sanitize, validate, stage
// up to the batch cap, then upsert the staged batch in one transaction.
package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cconley717/contact-keeper-manager/internal/apperror"
	"github.com/cconley717/contact-keeper-manager/internal/csvio"
	"github.com/cconley717/contact-keeper-manager/internal/model"
	"github.com/cconley717/contact-keeper-manager/internal/sanitize"
	"github.com/cconley717/contact-keeper-manager/internal/store"
	"github.com/cconley717/contact-keeper-manager/internal/validate"
)

// ContactImporter imports contact CSV files.
type ContactImporter struct {
	store    *store.Store
	batchCap int
}

// NewContactImporter creates an importer that stages at most batchCap records
// per call.
func NewContactImporter(s *store.Store, batchCap int) *ContactImporter {
	return &ContactImporter{store: s, batchCap: batchCap}
}

// Import parses the raw CSV buffer and upserts the staged batch. Row-level
// defects land in the summary; a malformed byte stream or a storage failure
// aborts the whole call with nothing committed.
func (imp *ContactImporter) Import(ctx context.Context, data []byte) (model.ImportSummary, error) {
	summary := model.ImportSummary{Errors: []string{}}

	reader, err := csvio.NewReader(data, csvio.ContactColumns)
	if err != nil {
		return summary, apperror.Wrap(err, apperror.KindInternal, "unparsable CSV file")
	}

	var batch []model.Contact
	staged := make(map[int64]int) // natural key -> index in batch
	row := 0
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.ImportSummary{Errors: []string{}}, apperror.Wrap(err, apperror.KindInternal, "unparsable CSV file")
		}
		row++

		if len(batch) >= imp.batchCap {
			truncated := countRemaining(reader) + 1
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("batch cap of %d records reached; %d records were not imported", imp.batchCap, truncated))
			break
		}

		rawKey := rec["contact_id"]
		if _, ok := sanitize.Integer(rawKey); !ok {
			summary.Skipped++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("row %d skipped: invalid contact_id '%s'", row, rawOrEmpty(rawKey)))
			continue
		}

		result := validate.Contact(contactInput(rec))
		if !result.IsValid {
			summary.Skipped++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("row %d skipped: %s", row, strings.Join(result.Errors, "; ")))
			continue
		}

		// A key appearing twice in one file is an upsert of itself: the
		// later row wins and the batch stays free of duplicate keys.
		if idx, seen := staged[result.Contact.ContactID]; seen {
			batch[idx] = result.Contact
			continue
		}
		staged[result.Contact.ContactID] = len(batch)
		batch = append(batch, result.Contact)
	}

	inserted, updated, err := imp.store.BatchUpsertContacts(ctx, batch)
	if err != nil {
		return model.ImportSummary{Errors: []string{}}, err
	}
	summary.Inserted = inserted
	summary.Updated = updated
	summary.TotalRecords = summary.Inserted + summary.Updated + summary.Skipped
	return summary, nil
}

// ClientImporter imports client CSV files.
type ClientImporter struct {
	store    *store.Store
	batchCap int
}

// NewClientImporter creates an importer that stages at most batchCap records
// per call.
func NewClientImporter(s *store.Store, batchCap int) *ClientImporter {
	return &ClientImporter{store: s, batchCap: batchCap}
}

// Import parses the raw CSV buffer and upserts the staged client batch.
func (imp *ClientImporter) Import(ctx context.Context, data []byte) (model.ImportSummary, error) {
	summary := model.ImportSummary{Errors: []string{}}

	reader, err := csvio.NewReader(data, csvio.ClientColumns)
	if err != nil {
		return summary, apperror.Wrap(err, apperror.KindInternal, "unparsable CSV file")
	}

	var batch []model.Client
	staged := make(map[int64]int)
	row := 0
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.ImportSummary{Errors: []string{}}, apperror.Wrap(err, apperror.KindInternal, "unparsable CSV file")
		}
		row++

		if len(batch) >= imp.batchCap {
			truncated := countRemaining(reader) + 1
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("batch cap of %d records reached; %d records were not imported", imp.batchCap, truncated))
			break
		}

		rawKey := rec["client_id"]
		if _, ok := sanitize.Integer(rawKey); !ok {
			summary.Skipped++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("row %d skipped: invalid client_id '%s'", row, rawOrEmpty(rawKey)))
			continue
		}

		result := validate.Client(model.ClientInput{
			ClientID:   rec["client_id"],
			ClientName: rec["client_name"],
		})
		if !result.IsValid {
			summary.Skipped++
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("row %d skipped: %s", row, strings.Join(result.Errors, "; ")))
			continue
		}

		if idx, seen := staged[result.Client.ClientID]; seen {
			batch[idx] = result.Client
			continue
		}
		staged[result.Client.ClientID] = len(batch)
		batch = append(batch, result.Client)
	}

	inserted, updated, err := imp.store.BatchUpsertClients(ctx, batch)
	if err != nil {
		return model.ImportSummary{Errors: []string{}}, err
	}
	summary.Inserted = inserted
	summary.Updated = updated
	summary.TotalRecords = summary.Inserted + summary.Updated + summary.Skipped
	return summary, nil
}

func contactInput(rec csvio.Record) model.ContactInput {
	return model.ContactInput{
		ContactID:          rec["contact_id"],
		FirstName:          rec["first_name"],
		LastName:           rec["last_name"],
		EmailAddress:       rec["email_address"],
		Phone:              rec["phone"],
		Program:            rec["program"],
		LawFirmName:        rec["law_firm_name"],
		LawFirmID:          rec["law_firm_id"],
		ContactCreatedDate: rec["contact_created_date"],
	}
}

// countRemaining drains the rest of the record sequence so the truncation
// message can report how many rows were cut off. Draining only tokenizes;
// nothing is staged.
func countRemaining(reader *csvio.Reader) int {
	n := 0
	for {
		if _, err := reader.Next(); err != nil {
			return n
		}
		n++
	}
}

func rawOrEmpty(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "<empty>"
	}
	return strings.TrimSpace(raw)
}
