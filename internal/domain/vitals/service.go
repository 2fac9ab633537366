package vitals

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ehr/vitals/internal/platform/metrics"
)

// Service runs each query or mutation as one unit of work: the store is
// rebuilt from the repository, operated on, and written back when mutated.
// Units of work are serialised so concurrent requests never interleave file
// reads and writes.
type Service struct {
	repo   VisitFileRepository
	logger zerolog.Logger
	mu     sync.Mutex
}

func NewService(repo VisitFileRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) load(ctx context.Context) (*IngestResult, error) {
	rc, err := s.repo.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return Ingest(rc, s.logger)
}

// Parse ingests vitals lines from r without touching the repository.
func (s *Service) Parse(r io.Reader) (*IngestResult, error) {
	return Ingest(r, s.logger)
}

// Load rebuilds the store and reports the lines that were skipped.
func (s *Service) Load(ctx context.Context) (*IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Service) withStore(ctx context.Context, fn func(*VisitStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.load(ctx)
	if err != nil {
		return err
	}
	return fn(res.Store)
}

func (s *Service) Patients(ctx context.Context, patientID int) ([]PatientRecord, error) {
	var out []PatientRecord
	err := s.withStore(ctx, func(store *VisitStore) error {
		var err error
		out, err = ListPatients(store, patientID)
		return err
	})
	return out, err
}

func (s *Service) Stats(ctx context.Context, patientID int) (*VitalStats, error) {
	var out *VitalStats
	err := s.withStore(ctx, func(store *VisitStore) error {
		var err error
		out, err = ComputeStats(store, patientID)
		return err
	})
	return out, err
}

func (s *Service) VisitsByDate(ctx context.Context, f DateFilter) ([]PatientVisit, error) {
	var out []PatientVisit
	err := s.withStore(ctx, func(store *VisitStore) error {
		out = FindVisitsByDate(store, f)
		return nil
	})
	return out, err
}

func (s *Service) FollowUps(ctx context.Context) ([]int, error) {
	var out []int
	err := s.withStore(ctx, func(store *VisitStore) error {
		out = FindFollowUpCandidates(store)
		return nil
	})
	return out, err
}

// FollowUpReport returns the follow-up ids and their flagged visits from a
// single load of the store.
func (s *Service) FollowUpReport(ctx context.Context) (FollowUpReport, error) {
	var out FollowUpReport
	err := s.withStore(ctx, func(store *VisitStore) error {
		out = BuildFollowUpReport(store)
		return nil
	})
	return out, err
}

// AddVisit validates the visit, appends it to the backing file and returns
// the patient's updated record. A missing file is created; any other load
// failure aborts before the file is touched.
func (s *Service) AddVisit(ctx context.Context, patientID int, in VisitInput) (PatientRecord, error) {
	v, err := ValidateVisit(patientID, in, true)
	if err != nil {
		metrics.IncMutation("add", metrics.ResultError)
		return PatientRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	store := NewVisitStore()
	res, err := s.load(ctx)
	switch {
	case err == nil:
		store = res.Store
	case !errors.Is(err, fs.ErrNotExist):
		metrics.IncMutation("add", metrics.ResultError)
		return PatientRecord{}, err
	}

	if err := s.repo.Append(ctx, FormatLine(patientID, v)); err != nil {
		metrics.IncMutation("add", metrics.ResultError)
		return PatientRecord{}, fmt.Errorf("persist visit: %w", err)
	}
	store.Add(patientID, v)
	metrics.IncMutation("add", metrics.ResultSuccess)
	s.logger.Info().Int("patient_id", patientID).Str("date", v.Date.String()).Msg("visit added")

	rec, _ := store.Get(patientID)
	return rec, nil
}

// DeleteAllVisits removes the patient and rewrites the backing file from the
// remaining records. It returns the number of visits removed.
func (s *Service) DeleteAllVisits(ctx context.Context, patientID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.load(ctx)
	if err != nil {
		metrics.IncMutation("delete", metrics.ResultError)
		return 0, err
	}
	store := res.Store
	rec, ok := store.Get(patientID)
	if !ok {
		metrics.IncMutation("delete", metrics.ResultError)
		return 0, fmt.Errorf("patient %d: %w", patientID, ErrPatientNotFound)
	}
	store.Delete(patientID)
	if err := s.repo.Rewrite(ctx, store); err != nil {
		metrics.IncMutation("delete", metrics.ResultError)
		return 0, fmt.Errorf("rewrite vitals file: %w", err)
	}
	metrics.IncMutation("delete", metrics.ResultSuccess)
	s.logger.Info().Int("patient_id", patientID).Int("visits", len(rec.Visits)).Msg("patient visits deleted")
	return len(rec.Visits), nil
}
