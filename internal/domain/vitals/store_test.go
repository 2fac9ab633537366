package vitals

import (
	"reflect"
	"testing"
)

func visitOn(year, month, day int, hr int) Visit {
	return Visit{
		Date:             VisitDate{Year: year, Month: month, Day: day},
		Temperature:      37.0,
		HeartRate:        hr,
		RespiratoryRate:  16,
		SystolicBP:       120,
		DiastolicBP:      80,
		OxygenSaturation: 98,
	}
}

func TestVisitStore_AddKeepsInsertionOrder(t *testing.T) {
	s := NewVisitStore()
	s.Add(5, visitOn(2024, 1, 1, 70))
	s.Add(2, visitOn(2024, 1, 2, 71))
	s.Add(5, visitOn(2024, 1, 3, 72))
	s.Add(9, visitOn(2024, 1, 4, 73))

	if got := s.PatientIDs(); !reflect.DeepEqual(got, []int{5, 2, 9}) {
		t.Errorf("expected first-insertion order [5 2 9], got %v", got)
	}
	if s.Len() != 3 || s.VisitCount() != 4 {
		t.Errorf("expected 3 patients and 4 visits, got %d and %d", s.Len(), s.VisitCount())
	}

	rec, ok := s.Get(5)
	if !ok {
		t.Fatal("expected patient 5")
	}
	if len(rec.Visits) != 2 || rec.Visits[0].HeartRate != 70 || rec.Visits[1].HeartRate != 72 {
		t.Errorf("expected visits in arrival order, got %+v", rec.Visits)
	}
}

func TestVisitStore_GetReturnsCopy(t *testing.T) {
	s := NewVisitStore()
	s.Add(1, visitOn(2024, 1, 1, 70))

	rec, _ := s.Get(1)
	rec.Visits[0].HeartRate = 999

	again, _ := s.Get(1)
	if again.Visits[0].HeartRate != 70 {
		t.Error("expected store to be unaffected by changes to a returned record")
	}
}

func TestVisitStore_Delete(t *testing.T) {
	s := NewVisitStore()
	s.Add(1, visitOn(2024, 1, 1, 70))
	s.Add(2, visitOn(2024, 1, 1, 70))
	s.Add(3, visitOn(2024, 1, 1, 70))

	if !s.Delete(2) {
		t.Fatal("expected delete of existing patient to succeed")
	}
	if s.Has(2) {
		t.Error("expected patient 2 to be gone")
	}
	if got := s.PatientIDs(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("expected [1 3], got %v", got)
	}
	if s.Delete(2) {
		t.Error("expected second delete to report false")
	}
}

func TestVisitStore_EachStopsEarly(t *testing.T) {
	s := NewVisitStore()
	s.Add(1, visitOn(2024, 1, 1, 70))
	s.Add(1, visitOn(2024, 1, 2, 70))
	s.Add(2, visitOn(2024, 1, 3, 70))

	n := 0
	s.Each(func(int, Visit) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("expected iteration to stop after 2 visits, got %d", n)
	}
}

func TestVisitStore_Lines(t *testing.T) {
	s := NewVisitStore()
	s.Add(2, visitOn(2024, 3, 1, 70))
	s.Add(1, visitOn(2024, 3, 2, 65))
	s.Add(2, visitOn(2024, 3, 3, 75))

	want := []string{
		"2,2024-03-01,37.0,70,16,120,80,98",
		"2,2024-03-03,37.0,75,16,120,80,98",
		"1,2024-03-02,37.0,65,16,120,80,98",
	}
	if got := s.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestVisitStore_Empty(t *testing.T) {
	s := NewVisitStore()
	if s.Len() != 0 || s.VisitCount() != 0 {
		t.Error("expected empty store")
	}
	if recs := s.Records(); recs == nil || len(recs) != 0 {
		t.Errorf("expected empty non-nil records, got %v", recs)
	}
	if _, ok := s.Get(1); ok {
		t.Error("expected no record in empty store")
	}
}
