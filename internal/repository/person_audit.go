package repository

import (
	"context"
	"fmt"

	appErrors "github.com/noah-isme/sma-roster-api/pkg/errors"
)

const personFirstNameQuery = "SELECT person_id, first_name FROM person ORDER BY person_id"

// PersonAudit checks concealed first names across the whole person table, regardless of role.
type PersonAudit struct {
	provider connectionProvider
	codec    fieldCodec
}

// NewPersonAudit constructs a PersonAudit.
func NewPersonAudit(provider connectionProvider, codec fieldCodec) *PersonAudit {
	return &PersonAudit{provider: provider, codec: codec}
}

// CorruptFirstNames returns the ids of person rows whose first name does not deobfuscate with the codec,
// along with the number of rows scanned.
func (a *PersonAudit) CorruptFirstNames(ctx context.Context) ([]uint64, int, error) {
	conn, err := a.provider.Acquire(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer conn.Close()

	rows, err := conn.QueryxContext(ctx, personFirstNameQuery)
	if err != nil {
		return nil, 0, auditError(fmt.Errorf("select person: %w", err))
	}
	defer rows.Close()

	corrupt := make([]uint64, 0)
	scanned := 0
	for rows.Next() {
		var (
			id        uint64
			firstName string
		)
		if err := rows.Scan(&id, &firstName); err != nil {
			return nil, scanned, auditError(fmt.Errorf("scan person: %w", err))
		}
		scanned++
		if _, err := a.codec.Deobfuscate(firstName); err != nil {
			corrupt = append(corrupt, id)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, scanned, auditError(fmt.Errorf("iterate person: %w", err))
	}
	return corrupt, scanned, nil
}

func auditError(err error) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to audit person first names")
}
