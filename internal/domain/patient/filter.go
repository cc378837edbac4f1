package patient

import (
	"sort"
	"strings"
	"time"
)

// Filter narrows a doctor's patient list. Age bounds are inclusive at both
// ends; a nil bound leaves that side open.
type Filter struct {
	Name   string
	Gender string
	MinAge *int
	MaxAge *int
}

// SortField selects the ordering for a patient list.
type SortField string

const (
	SortByName    SortField = "name"
	SortByAge     SortField = "age"
	SortByCreated SortField = "created"
)

// Age returns the patient's age in whole years at the given time, using
// calendar rules: the age increments on the birthday, not after 365 days.
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	// Not had the birthday yet this year.
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Apply filters the list in memory and returns the matching patients.
func Apply(patients []*Patient, f Filter, now time.Time) []*Patient {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	gender := strings.ToLower(strings.TrimSpace(f.Gender))

	var out []*Patient
	for _, p := range patients {
		if name != "" && !strings.Contains(strings.ToLower(p.FullName()), name) {
			continue
		}
		if gender != "" && strings.ToLower(p.Gender) != gender {
			continue
		}
		if f.MinAge != nil || f.MaxAge != nil {
			age := Age(p.BirthDate, now)
			if f.MinAge != nil && age < *f.MinAge {
				continue
			}
			if f.MaxAge != nil && age > *f.MaxAge {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// Sort orders the list in place by the given field. Ties fall back to
// creation time so the ordering is stable across requests.
func Sort(patients []*Patient, field SortField, desc bool) {
	less := func(a, b *Patient) bool {
		switch field {
		case SortByAge:
			// Older patients first in ascending order means earlier birth dates.
			if !a.BirthDate.Equal(b.BirthDate) {
				return a.BirthDate.Before(b.BirthDate)
			}
		case SortByCreated:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		default:
			an := strings.ToLower(a.LastName + " " + a.FirstName)
			bn := strings.ToLower(b.LastName + " " + b.FirstName)
			if an != bn {
				return an < bn
			}
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}

	sort.SliceStable(patients, func(i, j int) bool {
		if desc {
			return less(patients[j], patients[i])
		}
		return less(patients[i], patients[j])
	})
}
