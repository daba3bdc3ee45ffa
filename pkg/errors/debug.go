package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// PGDetail is the driver-independent view of a Postgres server error.
type PGDetail struct {
	Code       string `json:"code"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorDump flattens an error for structured logs. It is never sent to clients.
type ErrorDump struct {
	Message string    `json:"message"`
	Code    Code      `json:"code,omitempty"`
	Chain   []string  `json:"chain,omitempty"`
	PG      *PGDetail `json:"pg,omitempty"`
}

// Dump walks the unwrap chain of err and extracts the typed code and any
// Postgres diagnostics from either pgx or lib/pq.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{Message: err.Error(), PG: postgresDetail(err)}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", cur, cur))
	}
	return d
}

// LogFields renders the dump as logger fields; single-link chains are omitted.
func (d ErrorDump) LogFields() map[string]any {
	fields := map[string]any{"error": d.Message}
	if d.Code != "" {
		fields["error_code"] = d.Code
	}
	if len(d.Chain) > 1 {
		fields["error_chain"] = d.Chain
	}
	if d.PG != nil {
		fields["pg_code"] = d.PG.Code
		fields["pg_constraint"] = d.PG.Constraint
		fields["pg_table"] = d.PG.Table
		fields["pg_detail"] = d.PG.Detail
	}
	return fields
}

func postgresDetail(err error) *PGDetail {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &PGDetail{
			Code:       pgErr.Code,
			Constraint: pgErr.ConstraintName,
			Table:      pgErr.TableName,
			Column:     pgErr.ColumnName,
			Detail:     pgErr.Detail,
			Message:    pgErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &PGDetail{
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	return nil
}
