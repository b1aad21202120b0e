package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a row does not exist within the tenant's scope
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a conditional write lost a race with another writer
	ErrConflict = errors.New("concurrent modification")
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
