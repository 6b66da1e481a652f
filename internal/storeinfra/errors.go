package storeinfra

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/jmgilman/go/errors"
)

// translateError maps driver errors onto the shared error taxonomy so the
// services never switch on driver types. Unique violations from both
// supported drivers become already-exists.
func translateError(err error, resource string) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.Wrapf(err, errors.CodeNotFound, "%s not found", resource)
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrapf(err, errors.CodeTimeout, "%s query timed out", resource)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
		return errors.Wrapf(err, errors.CodeAlreadyExists, "%s already exists", resource)
	}

	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		if strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed") {
			return errors.Wrapf(err, errors.CodeAlreadyExists, "%s already exists", resource)
		}
	}

	return errors.Wrapf(err, errors.CodeDatabase, "%s query failed", resource)
}

// notFound reports a missing record without a wrapped driver error, for the
// update and delete paths that detect absence via affected rows.
func notFound(resource string) error {
	return errors.Newf(errors.CodeNotFound, "%s not found", resource)
}
