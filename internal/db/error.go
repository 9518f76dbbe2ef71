package db

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// DuplicateKeyError is an error type for duplicate key errors
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func IsDuplicateKeyError(err error) bool {
	var target *DuplicateKeyError
	return errors.As(err, &target)
}

// Not found Error
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// asDuplicateKeyError converts mongo duplicate key write errors, other errors are returned as is
func asDuplicateKeyError(err error, key, message string) error {
	if mongo.IsDuplicateKeyError(err) {
		return &DuplicateKeyError{
			Key:     key,
			Message: message,
		}
	}
	return err
}
