package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is wrapped by every backend when a row or session is missing
var ErrNotFound = goerr.New("not found")

// Repository is a backend that stores both assessments and sessions
type Repository interface {
	Assessment() AssessmentRepository
	Session() SessionRepository
	Close() error
}
