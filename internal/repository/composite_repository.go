package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-roster-api/internal/models"
	appErrors "github.com/noah-isme/sma-roster-api/pkg/errors"
)

// RoleSchema describes the role-specific table of a composite entity.
type RoleSchema struct {
	// Name labels errors and metrics, e.g. "student".
	Name  string
	Table string
	// Columns lists the role columns in the order returned by Composite.RoleValues.
	Columns []string
}

var personColumns = []string{"first_name", "middle_name", "paternal_surname", "maternal_surname", "birth_date", "role_type"}

type connectionProvider interface {
	Acquire(ctx context.Context) (*sqlx.Conn, error)
}

type fieldCodec interface {
	Obfuscate(plaintext string) string
	Deobfuscate(value string) (string, error)
}

// OperationObserver receives the duration of each repository operation.
type OperationObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// CompositeOptions tunes a CompositeRepository.
type CompositeOptions struct {
	// OperationTimeout bounds a whole operation including connection acquisition. Zero disables it.
	OperationTimeout time.Duration
	Observer         OperationObserver
}

type compositePtr[T any] interface {
	*T
	models.Composite
}

// CompositeRepository persists entities split across the person table and one role table.
// Every write runs in its own transaction on its own connection.
type CompositeRepository[T any, PT compositePtr[T]] struct {
	provider connectionProvider
	codec    fieldCodec
	schema   RoleSchema
	opts     CompositeOptions

	selectQuery       string
	insertPersonQuery string
	insertRoleQuery   string
	updatePersonQuery string
	updateRoleQuery   string
	deleteRoleQuery   string
	deletePersonQuery string
}

// NewCompositeRepository builds the statements for schema once.
func NewCompositeRepository[T any, PT compositePtr[T]](provider connectionProvider, codec fieldCodec, schema RoleSchema, opts CompositeOptions) *CompositeRepository[T, PT] {
	selectCols := make([]string, 0, 1+len(personColumns)+len(schema.Columns))
	selectCols = append(selectCols, "p.person_id")
	for _, col := range personColumns {
		selectCols = append(selectCols, "p."+col)
	}
	for _, col := range schema.Columns {
		selectCols = append(selectCols, "r."+col)
	}

	roleInsertCols := append([]string{"person_id"}, schema.Columns...)

	return &CompositeRepository[T, PT]{
		provider: provider,
		codec:    codec,
		schema:   schema,
		opts:     opts,

		selectQuery: fmt.Sprintf("SELECT %s FROM person p INNER JOIN %s r ON p.person_id = r.person_id",
			strings.Join(selectCols, ", "), schema.Table),
		insertPersonQuery: fmt.Sprintf("INSERT INTO person (%s) VALUES (%s) RETURNING person_id",
			strings.Join(personColumns, ", "), placeholders(1, len(personColumns))),
		insertRoleQuery: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			schema.Table, strings.Join(roleInsertCols, ", "), placeholders(1, len(roleInsertCols))),
		updatePersonQuery: fmt.Sprintf("UPDATE person SET %s WHERE person_id = $%[2]d AND EXISTS (SELECT 1 FROM %[3]s r WHERE r.person_id = $%[2]d)",
			assignments(personColumns), len(personColumns)+1, schema.Table),
		updateRoleQuery: fmt.Sprintf("UPDATE %s SET %s WHERE person_id = $%d",
			schema.Table, assignments(schema.Columns), len(schema.Columns)+1),
		deleteRoleQuery:   fmt.Sprintf("DELETE FROM %s WHERE person_id = $1", schema.Table),
		deletePersonQuery: "DELETE FROM person WHERE person_id = $1",
	}
}

// List returns every entity of this role in storage order with first names revealed.
func (r *CompositeRepository[T, PT]) List(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	err := r.withConn(ctx, "list", func(ctx context.Context, conn *sqlx.Conn) error {
		if err := conn.SelectContext(ctx, &items, r.selectQuery); err != nil {
			return r.persistenceError(fmt.Errorf("select %s: %w", r.schema.Table, err), "list")
		}
		for i := range items {
			if err := r.reveal(PT(&items[i]).PersonRecord()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns a single entity; sql.ErrNoRows when the id does not exist for this role.
func (r *CompositeRepository[T, PT]) Get(ctx context.Context, id uint64) (*T, error) {
	var item T
	err := r.withConn(ctx, "get", func(ctx context.Context, conn *sqlx.Conn) error {
		if err := conn.GetContext(ctx, &item, r.selectQuery+" WHERE p.person_id = $1", id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return err
			}
			return r.persistenceError(fmt.Errorf("select %s: %w", r.schema.Table, err), "load")
		}
		return r.reveal(PT(&item).PersonRecord())
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts the person row and the role row atomically and sets the generated person id.
func (r *CompositeRepository[T, PT]) Create(ctx context.Context, entity PT) error {
	person := entity.PersonRecord()
	var id uint64
	err := r.withTx(ctx, "create", func(ctx context.Context, tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, r.insertPersonQuery, r.personValues(person)...).Scan(&id); err != nil {
			return fmt.Errorf("insert person: %w", err)
		}
		args := append([]interface{}{id}, entity.RoleValues()...)
		if _, err := tx.ExecContext(ctx, r.insertRoleQuery, args...); err != nil {
			return fmt.Errorf("insert %s: %w", r.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	person.ID = id
	return nil
}

// Update rewrites both rows for id and returns how many person rows matched.
// The person row is only touched when id has a row in this role's table, so an id
// belonging to another role is left alone. A missing id commits two no-op updates and reports zero.
func (r *CompositeRepository[T, PT]) Update(ctx context.Context, id uint64, entity PT) (int64, error) {
	var affected int64
	err := r.withTx(ctx, "update", func(ctx context.Context, tx *sqlx.Tx) error {
		args := append(r.personValues(entity.PersonRecord()), id)
		res, err := tx.ExecContext(ctx, r.updatePersonQuery, args...)
		if err != nil {
			return fmt.Errorf("update person: %w", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("update person rows affected: %w", err)
		}
		roleArgs := append(entity.RoleValues(), id)
		if _, err := tx.ExecContext(ctx, r.updateRoleQuery, roleArgs...); err != nil {
			return fmt.Errorf("update %s: %w", r.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Delete removes the role row, then the person row. The person row is kept when id has
// no row in this role's table. Deleting a missing id is not an error.
func (r *CompositeRepository[T, PT]) Delete(ctx context.Context, id uint64) (int64, error) {
	var affected int64
	err := r.withTx(ctx, "delete", func(ctx context.Context, tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, r.deleteRoleQuery, id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", r.schema.Table, err)
		}
		roleRows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete %s rows affected: %w", r.schema.Table, err)
		}
		if roleRows == 0 {
			return nil
		}
		res, err = tx.ExecContext(ctx, r.deletePersonQuery, id)
		if err != nil {
			return fmt.Errorf("delete person: %w", err)
		}
		if affected, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("delete person rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Schema exposes the role schema the repository was built with.
func (r *CompositeRepository[T, PT]) Schema() RoleSchema {
	return r.schema
}

// personValues returns the person columns with the first name concealed. The caller's struct is not modified.
func (r *CompositeRepository[T, PT]) personValues(p *models.Person) []interface{} {
	return []interface{}{
		r.codec.Obfuscate(p.FirstName),
		p.MiddleName,
		p.PaternalSurname,
		p.MaternalSurname,
		p.BirthDate,
		p.RoleType,
	}
}

func (r *CompositeRepository[T, PT]) reveal(p *models.Person) error {
	name, err := r.codec.Deobfuscate(p.FirstName)
	if err != nil {
		return appErrors.Wrap(fmt.Errorf("person %d first_name: %w", p.ID, err), appErrors.ErrFormat.Code, appErrors.ErrFormat.Status, appErrors.ErrFormat.Message)
	}
	p.FirstName = name
	return nil
}

func (r *CompositeRepository[T, PT]) withConn(ctx context.Context, op string, fn func(context.Context, *sqlx.Conn) error) error {
	ctx, cancel := r.operationContext(ctx)
	defer cancel()
	defer r.observe(op, time.Now())

	conn, err := r.provider.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn)
}

// withTx runs fn inside a transaction that is committed only when fn and the commit both succeed.
func (r *CompositeRepository[T, PT]) withTx(ctx context.Context, op string, fn func(context.Context, *sqlx.Tx) error) error {
	return r.withConn(ctx, op, func(ctx context.Context, conn *sqlx.Conn) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return r.persistenceError(fmt.Errorf("begin %s tx: %w", op, err), op)
		}
		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		if err := fn(ctx, tx); err != nil {
			return r.persistenceError(err, op)
		}
		if err := tx.Commit(); err != nil {
			return r.persistenceError(fmt.Errorf("commit %s tx: %w", op, err), op)
		}
		committed = true
		return nil
	})
}

func (r *CompositeRepository[T, PT]) operationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.OperationTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.OperationTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *CompositeRepository[T, PT]) observe(op string, start time.Time) {
	if r.opts.Observer == nil {
		return
	}
	r.opts.Observer.ObserveDBQuery(r.schema.Name+"."+op, time.Since(start))
}

func (r *CompositeRepository[T, PT]) persistenceError(err error, op string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, fmt.Sprintf("failed to %s %s", op, r.schema.Name))
}

func placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func assignments(columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	return strings.Join(parts, ", ")
}
