package patient

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func mkPatient(first, last, gender string, birth time.Time, created time.Time) *Patient {
	return &Patient{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		FirstName: first,
		LastName:  last,
		Gender:    gender,
		BirthDate: birth,
		CreatedAt: created,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(v int) *int { return &v }

func TestAge_BeforeAndAfterBirthday(t *testing.T) {
	birth := date(1990, time.June, 15)
	if got := Age(birth, date(2026, time.June, 14)); got != 35 {
		t.Errorf("day before birthday: age = %d, want 35", got)
	}
	if got := Age(birth, date(2026, time.June, 15)); got != 36 {
		t.Errorf("on birthday: age = %d, want 36", got)
	}
	if got := Age(birth, date(2026, time.June, 16)); got != 36 {
		t.Errorf("day after birthday: age = %d, want 36", got)
	}
}

func TestAge_NeverNegative(t *testing.T) {
	if got := Age(date(2030, time.January, 1), date(2026, time.January, 1)); got != 0 {
		t.Errorf("future birth date: age = %d, want 0", got)
	}
}

func TestApply_AgeBoundsInclusive(t *testing.T) {
	now := date(2026, time.August, 25)
	patients := []*Patient{
		mkPatient("A", "One", "female", date(1996, time.August, 25), now),   // exactly 30
		mkPatient("B", "Two", "male", date(1986, time.August, 25), now),     // exactly 40
		mkPatient("C", "Three", "female", date(1996, time.August, 26), now), // 29, birthday tomorrow
		mkPatient("D", "Four", "male", date(1985, time.August, 1), now),     // 41
	}

	got := Apply(patients, Filter{MinAge: intPtr(30), MaxAge: intPtr(40)}, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 patients in [30, 40], got %d", len(got))
	}
	for _, p := range got {
		age := Age(p.BirthDate, now)
		if age < 30 || age > 40 {
			t.Errorf("patient %s %s aged %d is outside the inclusive bounds", p.FirstName, p.LastName, age)
		}
	}
}

func TestApply_OpenEndedBounds(t *testing.T) {
	now := date(2026, time.August, 25)
	patients := []*Patient{
		mkPatient("A", "One", "female", date(2010, time.January, 1), now), // 16
		mkPatient("B", "Two", "male", date(1950, time.January, 1), now),   // 76
	}

	if got := Apply(patients, Filter{MinAge: intPtr(18)}, now); len(got) != 1 || got[0].FirstName != "B" {
		t.Errorf("MinAge only: expected just the 76-year-old, got %d match(es)", len(got))
	}
	if got := Apply(patients, Filter{MaxAge: intPtr(18)}, now); len(got) != 1 || got[0].FirstName != "A" {
		t.Errorf("MaxAge only: expected just the 16-year-old, got %d match(es)", len(got))
	}
}

func TestApply_NameSubstringCaseInsensitive(t *testing.T) {
	now := date(2026, time.August, 25)
	patients := []*Patient{
		mkPatient("Marija", "Horvat", "female", date(1980, time.May, 5), now),
		mkPatient("Ivan", "Kovac", "male", date(1975, time.March, 3), now),
	}
	got := Apply(patients, Filter{Name: "horv"}, now)
	if len(got) != 1 || got[0].LastName != "Horvat" {
		t.Fatalf("expected one match on last name substring, got %d", len(got))
	}
	got = Apply(patients, Filter{Name: "MARIJA HOR"}, now)
	if len(got) != 1 {
		t.Errorf("full-name substring should match case-insensitively, got %d", len(got))
	}
}

func TestApply_Gender(t *testing.T) {
	now := date(2026, time.August, 25)
	patients := []*Patient{
		mkPatient("A", "One", "female", date(1980, time.May, 5), now),
		mkPatient("B", "Two", "male", date(1975, time.March, 3), now),
	}
	got := Apply(patients, Filter{Gender: "Female"}, now)
	if len(got) != 1 || got[0].Gender != "female" {
		t.Fatalf("expected one female patient, got %d", len(got))
	}
}

func TestApply_EmptyFilterKeepsAll(t *testing.T) {
	now := date(2026, time.August, 25)
	patients := []*Patient{
		mkPatient("A", "One", "female", date(1980, time.May, 5), now),
		mkPatient("B", "Two", "male", date(1975, time.March, 3), now),
	}
	if got := Apply(patients, Filter{}, now); len(got) != len(patients) {
		t.Errorf("empty filter should keep all %d patients, got %d", len(patients), len(got))
	}
}

func TestSort_ByName(t *testing.T) {
	now := date(2026, time.August, 25)
	patients := []*Patient{
		mkPatient("Ivan", "Kovac", "male", date(1975, time.March, 3), now),
		mkPatient("Marija", "Horvat", "female", date(1980, time.May, 5), now),
		mkPatient("Ana", "Babic", "female", date(1990, time.July, 7), now),
	}
	Sort(patients, SortByName, false)
	if patients[0].LastName != "Babic" || patients[1].LastName != "Horvat" || patients[2].LastName != "Kovac" {
		t.Errorf("ascending name sort out of order: %s, %s, %s",
			patients[0].LastName, patients[1].LastName, patients[2].LastName)
	}

	Sort(patients, SortByName, true)
	if patients[0].LastName != "Kovac" {
		t.Errorf("descending name sort should start with Kovac, got %s", patients[0].LastName)
	}
}

func TestSort_ByAgeAscendingIsOldestFirst(t *testing.T) {
	now := date(2026, time.August, 25)
	patients := []*Patient{
		mkPatient("Young", "One", "female", date(2000, time.January, 1), now),
		mkPatient("Old", "Two", "male", date(1950, time.January, 1), now),
	}
	Sort(patients, SortByAge, false)
	if patients[0].FirstName != "Old" {
		t.Errorf("age sort ascending should place the earlier birth date first, got %s", patients[0].FirstName)
	}
}

func TestSort_TiesFallBackToCreatedAt(t *testing.T) {
	birth := date(1980, time.May, 5)
	earlier := mkPatient("Same", "Name", "female", birth, date(2026, time.January, 1))
	later := mkPatient("Same", "Name", "female", birth, date(2026, time.February, 1))
	patients := []*Patient{later, earlier}
	Sort(patients, SortByName, false)
	if !patients[0].CreatedAt.Before(patients[1].CreatedAt) {
		t.Error("tied names should order by creation time")
	}
}
