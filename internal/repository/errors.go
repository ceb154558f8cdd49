package repository

import "errors"

var (
	// ErrNotAvailable means the storage engine could not be opened. Fatal to
	// persistence, not to the app: callers fall back to in-memory stores for
	// the session.
	ErrNotAvailable = errors.New("storage engine not available")

	// ErrQuotaExceeded means local storage capacity is exhausted. The write
	// is lost; upstream layers warn the user and keep running.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrTransactionFailed covers any other failed write. The write is lost.
	ErrTransactionFailed = errors.New("storage transaction failed")

	// ErrBlobMissing means no blob record exists under the requested key.
	ErrBlobMissing = errors.New("blob not found")
)
