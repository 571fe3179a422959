package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tammy-rb/siri-cosmetics-server/services/clinic-service/internal/model"
)

const (
	codeUniqueViolation     = "23505"
	codeExclusionViolation  = "23P01"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsConflict(err error) bool {
	return pgCode(err) == codeExclusionViolation
}

func IsDuplicate(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// translate maps driver errors onto the domain taxonomy. Unknown errors pass through.
func translate(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	switch {
	case IsNotFound(err), pgCode(err) == codeInvalidText:
		return &model.NotFoundError{Resource: resource, Key: key}
	case IsDuplicate(err):
		return &model.DuplicateError{Resource: resource, Key: key}
	case IsConflict(err):
		return &model.ConflictError{Message: "time slot already booked"}
	case pgCode(err) == codeForeignKeyViolation:
		return &model.ConflictError{Message: resource + " is referenced by other records"}
	}
	return err
}
