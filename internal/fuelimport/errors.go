package fuelimport

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for session and submit misuse.
var (
	// ErrInvalidFile is matched by every whole-file parse failure
	// (EmptyFileError, MissingHeaderError) via errors.Is.
	ErrInvalidFile = errors.New("invalid import file")

	// ErrNothingToUpload is returned by Submit when no candidate is valid.
	// No request is sent.
	ErrNothingToUpload = errors.New("no valid records to upload")

	// ErrNoCandidates is returned by Session operations before a file is loaded.
	ErrNoCandidates = errors.New("no file loaded")

	// ErrSessionBusy is returned while a batch submit is in flight.
	ErrSessionBusy = errors.New("submit in progress")

	// ErrSessionClosed is returned after a successful submit; load a new file to continue.
	ErrSessionClosed = errors.New("session already submitted")

	// ErrIndexOutOfRange is returned by Session.UpdateField for a bad candidate index.
	ErrIndexOutOfRange = errors.New("candidate index out of range")

	// ErrUnknownField is returned by ParseField for names outside the import format.
	ErrUnknownField = errors.New("unknown field")
)

// EmptyFileError reports a file with a header but no data rows, or nothing at all.
type EmptyFileError struct {
	// Lines is the number of non-blank lines found.
	Lines int
}

func (e *EmptyFileError) Error() string {
	return fmt.Sprintf("csv file contains no data rows (%d non-blank lines)", e.Lines)
}

// Unwrap lets errors.Is(err, ErrInvalidFile) match.
func (e *EmptyFileError) Unwrap() error { return ErrInvalidFile }

// MissingHeaderError lists every required column absent from the header row.
type MissingHeaderError struct {
	Missing []string
}

func (e *MissingHeaderError) Error() string {
	return "missing required header columns: " + strings.Join(e.Missing, ", ")
}

// Unwrap lets errors.Is(err, ErrInvalidFile) match.
func (e *MissingHeaderError) Unwrap() error { return ErrInvalidFile }

// SubmitError is a non-2xx answer from the collection endpoint.
// The whole batch is treated as failed.
type SubmitError struct {
	StatusCode int
	Message    string
}

func (e *SubmitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upload failed: status %d", e.StatusCode)
	}
	return fmt.Sprintf("upload failed: status %d: %s", e.StatusCode, e.Message)
}
