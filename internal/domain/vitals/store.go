package vitals

// VisitStore holds the visit history of every patient in memory. Patients are
// iterated in the order their first visit was inserted; a patient id never
// maps to an empty visit list.
//
// A VisitStore is not safe for concurrent use; Service serialises access.
type VisitStore struct {
	records map[int][]Visit
	order   []int
}

// NewVisitStore returns an empty store.
func NewVisitStore() *VisitStore {
	return &VisitStore{records: make(map[int][]Visit)}
}

// Add appends a visit to the patient's history, creating the record on the
// patient's first visit.
func (s *VisitStore) Add(patientID int, v Visit) {
	if _, ok := s.records[patientID]; !ok {
		s.order = append(s.order, patientID)
	}
	s.records[patientID] = append(s.records[patientID], v)
}

// Delete removes every visit of the patient. It returns false when the
// patient has no record.
func (s *VisitStore) Delete(patientID int) bool {
	if _, ok := s.records[patientID]; !ok {
		return false
	}
	delete(s.records, patientID)
	for i, id := range s.order {
		if id == patientID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns a copy of the patient's record.
func (s *VisitStore) Get(patientID int) (PatientRecord, bool) {
	visits, ok := s.records[patientID]
	if !ok {
		return PatientRecord{}, false
	}
	return PatientRecord{PatientID: patientID, Visits: append([]Visit(nil), visits...)}, true
}

// Has reports whether the patient has at least one visit.
func (s *VisitStore) Has(patientID int) bool {
	_, ok := s.records[patientID]
	return ok
}

// PatientIDs returns the patient ids in iteration order.
func (s *VisitStore) PatientIDs() []int {
	return append([]int(nil), s.order...)
}

// Len returns the number of patients.
func (s *VisitStore) Len() int {
	return len(s.order)
}

// VisitCount returns the number of visits across all patients.
func (s *VisitStore) VisitCount() int {
	n := 0
	for _, visits := range s.records {
		n += len(visits)
	}
	return n
}

// Records returns copies of all patient records in iteration order.
func (s *VisitStore) Records() []PatientRecord {
	out := make([]PatientRecord, 0, len(s.order))
	for _, id := range s.order {
		rec, _ := s.Get(id)
		out = append(out, rec)
	}
	return out
}

// Each calls fn for every visit in iteration order, stopping early when fn
// returns false.
func (s *VisitStore) Each(fn func(patientID int, v Visit) bool) {
	for _, id := range s.order {
		for _, v := range s.records[id] {
			if !fn(id, v) {
				return
			}
		}
	}
}

// Lines renders the store in the flat-file layout, one line per visit.
func (s *VisitStore) Lines() []string {
	lines := make([]string, 0, s.VisitCount())
	s.Each(func(id int, v Visit) bool {
		lines = append(lines, FormatLine(id, v))
		return true
	})
	return lines
}
