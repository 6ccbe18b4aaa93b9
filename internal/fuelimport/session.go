package fuelimport

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// State is a step of the import flow.
type State int

const (
	// StateEmpty: nothing loaded, or the last load failed.
	StateEmpty State = iota
	// StateParsed: candidates loaded and editable.
	StateParsed
	// StateSubmitting: a batch submit is in flight; edits and submits are refused.
	StateSubmitting
	// StateSubmitSucceeded: the batch was accepted; the working set is gone.
	StateSubmitSucceeded
	// StateSubmitFailed: the last submit failed; candidates are unchanged and
	// editable, and a new submit may be attempted.
	StateSubmitFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateParsed:
		return "parsed"
	case StateSubmitting:
		return "submitting"
	case StateSubmitSucceeded:
		return "submit_succeeded"
	case StateSubmitFailed:
		return "submit_failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Counts tallies candidates by status.
type Counts struct {
	Valid int `json:"valid"`
	Error int `json:"error"`
}

// Session holds one operator's working set of candidates between file load
// and batch submit. It replaces ambient page state: every operation goes
// through the Session value the caller owns. A Session is safe for
// concurrent use, but a submit in flight excludes edits.
type Session struct {
	opts ParseOptions

	mu         sync.Mutex
	state      State
	candidates []Candidate
	dropped    []DroppedRow
	key        uuid.UUID
	lastErr    error
}

// NewSession returns an empty session that parses files with opts.
func NewSession(opts ParseOptions) *Session {
	return &Session{opts: opts}
}

// Load parses text and replaces the working set.
// A whole-file error leaves the session empty. Load is refused while a
// submit is in flight.
func (s *Session) Load(text string) (ParseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return ParseResult{}, ErrSessionBusy
	}

	result, err := Parse(text, s.opts)
	if err != nil {
		s.reset()
		s.lastErr = err
		return ParseResult{}, err
	}

	s.state = StateParsed
	s.candidates = slices.Clone(result.Candidates)
	s.dropped = slices.Clone(result.Dropped)
	s.key = uuid.New()
	s.lastErr = nil
	return result, nil
}

// State returns the current flow state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Candidates returns a copy of the working set in file order.
func (s *Session) Candidates() []Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.candidates)
}

// Dropped returns the rows skipped at load for a wrong cell count.
func (s *Session) Dropped() []DroppedRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.dropped)
}

// Counts tallies the working set by status.
func (s *Session) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countCandidates(s.candidates)
}

// BatchKey is the idempotency key the next submit will carry. It changes on
// every load and every edit, so only an unchanged working set is deduplicated.
func (s *Session) BatchKey() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

// LastError returns the error of the most recent failed load or submit, if any.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// UpdateField sets one field of the candidate at index from raw text,
// re-validates that candidate only, and returns it. Other candidates are not
// touched. The last write to a field wins; there is no undo.
func (s *Session) UpdateField(index int, field Field, raw string) (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editable(); err != nil {
		return Candidate{}, err
	}
	if index < 0 || index >= len(s.candidates) {
		return Candidate{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.candidates))
	}
	if _, err := ParseField(field.String()); err != nil {
		return Candidate{}, err
	}

	updated := Validate(setField(s.candidates[index], field, raw))
	s.candidates[index] = updated
	s.key = uuid.New()
	return updated, nil
}

// Submit sends the valid candidates through sender.
//
// With no valid candidate it returns ErrNothingToUpload, sends nothing and
// leaves the state unchanged. On failure the candidates are kept and the
// session moves to StateSubmitFailed. On success the working set is
// discarded and the session moves to StateSubmitSucceeded.
func (s *Session) Submit(ctx context.Context, sender BatchSender) (SubmitResult, error) {
	s.mu.Lock()
	if err := s.editable(); err != nil {
		s.mu.Unlock()
		return SubmitResult{}, err
	}
	if countCandidates(s.candidates).Valid == 0 {
		s.mu.Unlock()
		return SubmitResult{}, ErrNothingToUpload
	}
	snapshot := slices.Clone(s.candidates)
	key := s.key
	s.state = StateSubmitting
	s.mu.Unlock()

	result, err := Submit(ctx, snapshot, key, sender)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateSubmitFailed
		s.lastErr = err
		return SubmitResult{}, err
	}
	s.reset()
	s.state = StateSubmitSucceeded
	s.lastErr = nil
	return result, nil
}

// editable reports why the working set cannot be changed or submitted now.
// Callers hold s.mu.
func (s *Session) editable() error {
	switch s.state {
	case StateParsed, StateSubmitFailed:
		return nil
	case StateEmpty:
		return ErrNoCandidates
	case StateSubmitting:
		return ErrSessionBusy
	case StateSubmitSucceeded:
		return ErrSessionClosed
	default:
		return errors.New("fuelimport: unknown session state")
	}
}

// reset discards the working set. Callers hold s.mu.
func (s *Session) reset() {
	s.state = StateEmpty
	s.candidates = nil
	s.dropped = nil
	s.key = uuid.Nil
}

func countCandidates(cs []Candidate) Counts {
	var n Counts
	for _, c := range cs {
		switch c.Status {
		case StatusValid:
			n.Valid++
		case StatusError:
			n.Error++
		}
	}
	return n
}
