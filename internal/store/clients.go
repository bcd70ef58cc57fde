package store

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/cconley717/contact-keeper-manager/internal/apperror"
	"github.com/cconley717/contact-keeper-manager/internal/model"
)

var clientColumns = []string{"id", "client_id", "client_name"}

const clientInsert = `
	INSERT INTO clients (client_id, client_name)
	VALUES (:client_id, :client_name)`

const clientUpsertSuffix = `
	ON DUPLICATE KEY UPDATE client_name = VALUES(client_name)`

// ClientSortField validates a requested sort field against the allow-list,
// falling back to the natural key.
func ClientSortField(requested string) string {
	for _, col := range clientColumns {
		if col == requested {
			return col
		}
	}
	return "client_id"
}

// ListClients returns one page of clients plus the total count of matches.
func (s *Store) ListClients(ctx context.Context, p ListParams) ([]model.Client, int64, error) {
	where := searchCondition(clientColumns, p.Search)

	countSQL, countArgs, err := sq.Select("COUNT(*)").From("clients").Where(where).ToSql()
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "build client count query")
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "count clients")
	}

	querySQL, queryArgs, err := sq.Select(clientColumns...).
		From("clients").
		Where(where).
		OrderBy(ClientSortField(p.SortField) + " " + sortDirection(p.SortOrder)).
		Limit(uint64(p.PageSize)).
		Offset(uint64(p.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "build client list query")
	}
	clients := []model.Client{}
	if err := s.db.SelectContext(ctx, &clients, querySQL, queryArgs...); err != nil {
		return nil, 0, apperror.Wrap(err, apperror.KindInternal, "list clients")
	}
	return clients, total, nil
}

// CreateClient inserts a new client after verifying that its natural key is
// not taken yet.
func (s *Store) CreateClient(ctx context.Context, c model.Client) (model.Client, error) {
	var count int
	if err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM clients WHERE client_id = ?", c.ClientID); err != nil {
		return c, apperror.Wrap(err, apperror.KindInternal, "check client uniqueness")
	}
	if count > 0 {
		return c, apperror.Newf(apperror.KindConflict, "client %d already exists", c.ClientID)
	}
	result, err := s.db.NamedExecContext(ctx, clientInsert, c)
	if err != nil {
		return c, apperror.Wrap(err, apperror.KindInternal, "insert client")
	}
	rowID, err := result.LastInsertId()
	if err != nil {
		return c, apperror.Wrap(err, apperror.KindInternal, "insert client")
	}
	c.ID = rowID
	return c, nil
}

// DeleteClient removes one client by its internal surrogate row id.
func (s *Store) DeleteClient(ctx context.Context, rowID int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", rowID)
	if err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "delete client")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperror.Wrap(err, apperror.KindInternal, "delete client")
	}
	if affected == 0 {
		return apperror.Newf(apperror.KindNotFound, "client %d not found", rowID)
	}
	return nil
}

// AllClients returns the full client set ordered by natural key ascending.
func (s *Store) AllClients(ctx context.Context) ([]model.Client, error) {
	clients := []model.Client{}
	err := s.db.SelectContext(ctx, &clients,
		"SELECT "+strings.Join(clientColumns, ", ")+" FROM clients ORDER BY client_id ASC")
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindInternal, "select all clients")
	}
	return clients, nil
}

// BatchUpsertClients applies one staged client import batch with the same
// single-transaction probe/partition/bulk-apply contract as the contact
// variant.
func (s *Store) BatchUpsertClients(ctx context.Context, batch []model.Client) (inserted int, updated int, err error) {
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
		ids = append(ids, c.ClientID)
	}
	query, args, err := sqlx.In("SELECT client_id FROM clients WHERE client_id IN (?)", ids)
	if err != nil {
		return 0, 0, apperror.Wrap(err, apperror.KindInternal, "build existence probe")
	}
	var found []int64
	if err := tx.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return 0, 0, apperror.Wrap(err, apperror.KindInternal, "probe existing clients")
	}
	existing := make(map[int64]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}

	var insertSet, updateSet []model.Client
	for _, c := range batch {
		if existing[c.ClientID] {
			updateSet = append(updateSet, c)
		} else {
			insertSet = append(insertSet, c)
		}
	}

	if len(insertSet) > 0 {
		if _, err := tx.NamedExecContext(ctx, clientInsert, insertSet); err != nil {
			return 0, 0, apperror.Wrap(err, apperror.KindInternal, "bulk insert clients")
		}
	}
	if len(updateSet) > 0 {
		if _, err := tx.NamedExecContext(ctx, clientInsert+clientUpsertSuffix, updateSet); err != nil {
			return 0, 0, apperror.Wrap(err, apperror.KindInternal, "bulk update clients")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, apperror.Wrap(err, apperror.KindInternal, "commit transaction")
	}
	return len(insertSet), len(updateSet), nil
}
