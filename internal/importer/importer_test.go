package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cconley717/contact-keeper-manager/internal/apperror"
	"github.com/cconley717/contact-keeper-manager/internal/store"
)

const contactHeader = "contact_id,first_name,last_name,email_address,phone,program,law_firm_name,law_firm_id,contact_created_date"

func contactRow(id int) string {
	return fmt.Sprintf("%d,Jane%d,Doe,jane%d@example.com,+1 555 000,MVA,Doe LLP,9,1/15/2024", id, id, id)
}

func contactCSV(ids ...int) []byte {
	lines := []string{contactHeader}
	for _, id := range ids {
		lines = append(lines, contactRow(id))
	}
	return []byte(strings.Join(lines, "\n") + "\n")
}

func newMock(t *testing.T) (*store.Store, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return store.New(db), mock, db
}

func probeRows(mock sqlmock.Sqlmock, ids ...int64) *sqlmock.Rows {
	rows := mock.NewRows([]string{"contact_id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	return rows
}

// TestImportAllNew checks the first half of the idempotent-upsert property:
// a fresh file yields inserted=N, updated=0 via one probe and one bulk
// insert.
func TestImportAllNew(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock))
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	summary, err := NewContactImporter(st, 1000).Import(context.Background(), contactCSV(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.Empty(t, summary.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportAllExisting checks the second half of the idempotent-upsert
// property: re-importing the same file yields inserted=0, updated=N through
// the bulk save-or-update statement.
func TestImportAllExisting(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock, 1, 2, 3))
	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	summary, err := NewContactImporter(st, 1000).Import(context.Background(), contactCSV(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 3, summary.Updated)
	assert.Equal(t, 3, summary.TotalRecords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportMixed checks partitioning: known keys go to the update set, new
// keys to the insert set, both applied in the same transaction.
func TestImportMixed(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock, 2))
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	summary, err := NewContactImporter(st, 1000).Import(context.Background(), contactCSV(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportBatchCap checks that staging stops at the cap, that exactly one
// truncation message reports the cut-off count, and that overflow rows never
// reach the database.
func TestImportBatchCap(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock))
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	summary, err := NewContactImporter(st, 3).Import(context.Background(), contactCSV(1, 2, 3, 4, 5, 6, 7, 8))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 3, summary.TotalRecords)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "batch cap of 3")
	assert.Contains(t, summary.Errors[0], "5 records were not imported")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportSkipsBadKeys checks the per-row validity gate: empty and
// non-positive keys are skipped with one message each, quoting the raw value
// or '<empty>', and are excluded from the batch.
func TestImportSkipsBadKeys(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	csv := []byte(strings.Join([]string{
		contactHeader,
		contactRow(1),
		",Missing,Key,,,,,," + "1/1/2024",
		"-2,Negative,Key,,,,,,1/1/2024",
		contactRow(4),
	}, "\n"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock))
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	summary, err := NewContactImporter(st, 1000).Import(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 4, summary.TotalRecords)
	require.Len(t, summary.Errors, 2)
	assert.Contains(t, summary.Errors[0], "row 2 skipped")
	assert.Contains(t, summary.Errors[0], "'<empty>'")
	assert.Contains(t, summary.Errors[1], "row 3 skipped")
	assert.Contains(t, summary.Errors[1], "'-2'")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportSkipsInvalidRows checks that rows failing validation (bad
// calendar date here) are skipped with their defect list.
func TestImportSkipsInvalidRows(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	csv := []byte(strings.Join([]string{
		contactHeader,
		"5,Jane,Doe,,,,,,2/31/2024",
		contactRow(6),
	}, "\n"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock))
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	summary, err := NewContactImporter(st, 1000).Import(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "row 1 skipped")
	assert.Contains(t, summary.Errors[0], "contact_created_date")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportDuplicateKeyInFile checks in-file dedup: the later occurrence of
// a key wins and the batch contains the key only once.
func TestImportDuplicateKeyInFile(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	csv := []byte(strings.Join([]string{
		contactHeader,
		"7,First,Version,,,,,,1/1/2024",
		"7,Second,Version,,,,,,1/2/2024",
	}, "\n"))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock))
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs(
			int64(7), "Second", "Version", nil, nil, nil, nil, nil, "1/2/2024",
		).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	summary, err := NewContactImporter(st, 1000).Import(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.TotalRecords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportRollbackOnUpdateFailure checks atomicity: when the update apply
// fails after the insert apply succeeded, the transaction is rolled back and
// the call fails as a whole.
func TestImportRollbackOnUpdateFailure(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contact_id FROM contacts WHERE contact_id IN").
		WillReturnRows(probeRows(mock, 2))
	mock.ExpectExec("INSERT INTO contacts").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	_, err := NewContactImporter(st, 1000).Import(context.Background(), contactCSV(1, 2))
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportMalformedCSV checks that a structurally broken stream aborts the
// call before any database work.
func TestImportMalformedCSV(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	csv := []byte(contactHeader + "\n1,\"unterminated\n")
	_, err := NewContactImporter(st, 1000).Import(context.Background(), csv)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestImportEmptyFile checks that a header-only file commits nothing and
// reports zero counts.
func TestImportEmptyFile(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	summary, err := NewContactImporter(st, 1000).Import(context.Background(), []byte(contactHeader+"\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalRecords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestClientImport checks the client variant end to end: mixed batch with a
// skipped bad key.
func TestClientImport(t *testing.T) {
	st, mock, db := newMock(t)
	defer db.Close()

	csv := []byte("client_id,client_name\n10,Acme\nbogus,Broken\n11,Globex\n")

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT client_id FROM clients WHERE client_id IN").
		WillReturnRows(mock.NewRows([]string{"client_id"}).AddRow(10))
	mock.ExpectExec("INSERT INTO clients").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("ON DUPLICATE KEY UPDATE").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	summary, err := NewClientImporter(st, 1000).Import(context.Background(), csv)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 3, summary.TotalRecords)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "'bogus'")
	assert.NoError(t, mock.ExpectationsWereMet())
}
