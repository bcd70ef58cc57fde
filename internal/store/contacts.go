package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/cconley717/contact-keeper-manager/internal/apperror"
	"github.com/cconley717/contact-keeper-manager/internal/model"
)

// contactColumns are the selectable columns of the contacts table, in table
// order. They double as the sort allow-list and the search surface.
var contactColumns = []string{
	"contact_id", "first_name", "last_name", "email_address", "phone",
	"program", "law_firm_name", "law_firm_id", "contact_created_date",
}

const contactInsert = `
	INSERT INTO contacts
		(contact_id, first_name, last_name, email_address, phone,
		 program, law_firm_name, law_firm_id, contact_created_date)
	VALUES
		(:contact_id, :first_name, :last_name, :email_address, :phone,
		 :program, :law_firm_name, :law_firm_id, :contact_created_date)`

// contactUpsertSuffix turns contactInsert into a save-or-update statement
// keyed by the natural key's unique constraint.
const contactUpsertSuffix = `
	ON DUPLICATE KEY UPDATE
		first_name = VALUES(first_name),
		last_name = VALUES(last_name),
		email_address = VALUES(email_address),
		phone = VALUES(phone),
		program = VALUES(program),
		law_firm_name = VALUES(law_firm_name),
		law_firm_id = VALUES(law_firm_id),
		contact_created_date = VALUES(contact_created_date)`

// ContactSortField validates a requested sort field against the column
// allow-list. Unrecognized values fall back to the natural key so that
// arbitrary text can never be interpolated into the query.
func ContactSortField(requested string) string {
	for _, col := range contactColumns {
		if col == requested {
			return col
		}
	}
	return "contact_id"
}

// ListContacts returns one page of contacts plus the total count of matches.
// The search term is matched case-insensitively as a substring OR'd across
// all columns.
func (s *Store) ListContacts(ctx context.Context, p ListParams) ([]model.Contact, int64, error) {
	where := searchCondition(contactColumns, p.Search)

	countSQL, countArgs, err := sq.Select("COUNT(*)").From("contacts").Where(where).ToSql()
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "build contact count query")
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "count contacts")
	}

	querySQL, queryArgs, err := sq.Select(contactColumns...).
		From("contacts").
		Where(where).
		OrderBy(ContactSortField(p.SortField) + " " + sortDirection(p.SortOrder)).
		Limit(uint64(p.PageSize)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "build contact list query")
	}
	contacts := []model.Contact{}
	if err := s.db.SelectContext(ctx, &contacts, querySQL, queryArgs...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "list contacts")
	}
	return contacts, total, nil
}

// GetContact fetches one contact by natural key.
func (s *Store) GetContact(ctx context.Context, id int64) (model.Contact, error) {
	var c model.Contact
	err := s.db.GetContext(ctx, &c,
		"SELECT "+strings.Join(contactColumns, ", ")+" FROM contacts WHERE contact_id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return c, apperror.Newf(apperror.KindNotFound, "contact %d not found", id)
	}
	if err != nil {
		return c, apperror.Wrap(err, apperror.KindInternal, "get contact")
	}
	return c, nil
}

// UpsertContact saves one contact by natural key and reports whether a new
// row was created. The existence probe and the upsert share one transaction
// so the created report stays exact under concurrent writers.
func (s *Store) UpsertContact(ctx context.Context, c model.Contact) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, apperror.Wrap(err, apperror.KindInternal, "begin transaction")
	}
	defer tx.Rollback()

	existing, err := s.existingContactIDs(ctx, tx, []int64{c.ContactID})
	if err != nil {
		return false, err
	}
	created := len(existing) == 0
	if _, err := tx.NamedExecContext(ctx, contactInsert+contactUpsertSuffix, c); err != nil {
		return false, apperror.Wrap(err, apperror.KindInternal, "upsert contact")
	}
	if err := tx.Commit(); err != nil {
		return false, apperror.Wrap(err, apperror.KindInternal, "commit transaction")
	}
	return created, nil
}

// ReplaceContact updates the contact currently stored under oldID with c.
// When the natural key changes it first verifies that the new key does not
// collide with a different row, then swaps the rows inside one transaction.
func (s *Store) ReplaceContact(ctx context.Context, oldID int64, c model.Contact) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "begin transaction")
	}
	defer tx.Rollback()

	var count int
	if err := tx.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM contacts WHERE contact_id = ?", oldID); err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "check contact")
	}
	if count == 0 {
		return apperror.Newf(apperror.KindNotFound, "contact %d not found", oldID)
	}

	if c.ContactID != oldID {
		if err := tx.GetContext(ctx, &count,
			"SELECT COUNT(*) FROM contacts WHERE contact_id = ?", c.ContactID); err != nil {
			return apperror.Wrap(err, apperror.KindInternal, "check contact collision")
		}
		if count > 0 {
			return apperror.Newf(apperror.KindConflict, "contact %d already exists", c.ContactID)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM contacts WHERE contact_id = ?", oldID); err != nil {
			return apperror.Wrap(err, apperror.KindInternal, "delete old contact")
		}
		if _, err := tx.NamedExecContext(ctx, contactInsert, c); err != nil {
			return apperror.Wrap(err, apperror.KindInternal, "insert replacement contact")
		}
	} else {
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE contacts SET
				first_name = :first_name,
				last_name = :last_name,
				email_address = :email_address,
				phone = :phone,
				program = :program,
				law_firm_name = :law_firm_name,
				law_firm_id = :law_firm_id,
				contact_created_date = :contact_created_date
			WHERE contact_id = :contact_id`, c); err != nil {
			return apperror.Wrap(err, apperror.KindInternal, "update contact")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "commit transaction")
	}
	return nil
}

// DeleteContact removes one contact by natural key.
func (s *Store) DeleteContact(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM contacts WHERE contact_id = ?", id)
	if err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "delete contact")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "delete contact")
	}
	if affected == 0 {
		return apperror.Newf(apperror.KindNotFound, "contact %d not found", id)
	}
	return nil
}

// AllContacts returns the full record set ordered by natural key ascending,
// as the exporter requires.
func (s *Store) AllContacts(ctx context.Context) ([]model.Contact, error) {
	contacts := []model.Contact{}
	err := s.db.SelectContext(ctx, &contacts,
		"SELECT "+strings.Join(contactColumns, ", ")+" FROM contacts ORDER BY contact_id ASC")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindInternal, "select all contacts")
	}
	return contacts, nil
}

// BatchUpsertContacts applies one staged import batch. Inside a single
// transaction it probes which natural keys already exist (one query for the
// whole batch), partitions the rows into an insert set and an update set
// preserving input order, and applies each set as one bulk statement. The
// batch commits completely or not at all.
func (s *Store) BatchUpsertContacts(ctx context.Context, batch []model.Contact) (inserted int, updated int, err error) {
	if len(batch) == 0 {
		return 0, 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, 0, apperror.Wrap(err, apperror.KindInternal, "begin transaction")
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(batch))
	for _, c := range batch {
		ids = append(ids, c.ContactID)
	}
	existing, err := s.existingContactIDs(ctx, tx, ids)
	if err != nil {
		return 0, 0, err
	}

	var insertSet, updateSet []model.Contact
	for _, c := range batch {
		if existing[c.ContactID] {
			updateSet = append(updateSet, c)
		} else {
			insertSet = append(insertSet, c)
		}
	}

	if len(insertSet) > 0 {
		if _, err := tx.NamedExecContext(ctx, contactInsert, insertSet); err != nil {
			return 0, 0, apperror.Wrap(err, apperror.KindInternal, "bulk insert contacts")
		}
	}
	if len(updateSet) > 0 {
		if _, err := tx.NamedExecContext(ctx, contactInsert+contactUpsertSuffix, updateSet); err != nil {
			return 0, 0, apperror.Wrap(err, apperror.KindInternal, "bulk update contacts")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, apperror.Wrap(err, apperror.KindInternal, "commit transaction")
	}
	return len(insertSet), len(updateSet), nil
}

// existingContactIDs returns the subset of ids already present, fetched in a
// single round trip.
func (s *Store) existingContactIDs(ctx context.Context, q sqlx.QueryerContext, ids []int64) (map[int64]bool, error) {
	query, args, err := sqlx.In("SELECT contact_id FROM contacts WHERE contact_id IN (?)", ids)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindInternal, "build existence probe")
	}
	var found []int64
	if err := sqlx.SelectContext(ctx, q, &found, s.db.Rebind(query), args...); err != nil {
		return nil, apperror.Wrap(err, apperror.KindInternal, "probe existing contacts")
	}
	existing := make(map[int64]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// searchCondition builds the case-insensitive substring match OR'd across
// all listed columns. An empty search matches everything.
func searchCondition(columns []string, search string) sq.Sqlizer {
	if strings.TrimSpace(search) == "" {
		return sq.Expr("1 = 1")
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.Expr(fmt.Sprintf("LOWER(CAST(%s AS CHAR)) LIKE ?", col), pattern))
	}
	return or
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "desc") {
		return "DESC"
	}
	return "ASC"
}
