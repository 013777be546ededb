package services

import (
	"errors"

	"github.com/jackc/pgx/v5"

	"traders/internal/common"
)

// notFound converts a repository miss into a NotFoundError for resource.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return common.NewNotFoundError(resource, id)
	}
	return err
}
