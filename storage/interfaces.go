package storage

import "credit-cleaner/models"

// TableWriter is the interface any output backend for a cleaned table must satisfy.
type TableWriter interface {
	Write(t *models.Table) error
	Close() error
}

// RunReader is implemented by backends that can read back the rows a run stored.
type RunReader interface {
	FetchRun(runID string) ([]*models.CreditApplication, error)
}
