package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"gorm.io/gorm"
)

// FilterCriteria narrows a record listing. Every field is optional and set
// fields combine with AND. Date bounds are inclusive calendar days. Month is
// only honoured together with Year.
type FilterCriteria struct {
	Department *string
	DateFrom   *time.Time
	DateTo     *time.Time
	Category   *string
	FactorID   *snowflake.ID
	Year       *int
	Month      *int
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// YearRange returns the first and last day of a calendar year.
func YearRange(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Bounds folds DateFrom, DateTo, Year and Month into a single inclusive day
// window. A nil bound is open.
func (f FilterCriteria) Bounds() (from, to *time.Time) {
	if f.DateFrom != nil {
		d := DateOnly(*f.DateFrom)
		from = &d
	}
	if f.DateTo != nil {
		d := DateOnly(*f.DateTo)
		to = &d
	}
	if f.Year == nil {
		return from, to
	}

	start, end := YearRange(*f.Year)
	if f.Month != nil && *f.Month >= 1 && *f.Month <= 12 {
		start = time.Date(*f.Year, time.Month(*f.Month), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, -1)
	}
	if from == nil || start.After(*from) {
		from = &start
	}
	if to == nil || end.Before(*to) {
		to = &end
	}
	return from, to
}

// Match is the in-memory form of Apply.
func (f FilterCriteria) Match(r Record) bool {
	if f.Department != nil && r.Department() != *f.Department {
		return false
	}
	if f.Category != nil && r.Category != *f.Category {
		return false
	}
	if f.FactorID != nil && r.EmissionFactorID != *f.FactorID {
		return false
	}

	day := DateOnly(r.MeasurementDate)
	from, to := f.Bounds()
	if from != nil && day.Before(*from) {
		return false
	}
	if to != nil && day.After(*to) {
		return false
	}
	return true
}

// Apply adds the criteria to a query over the table of scope s.
func (f FilterCriteria) Apply(stmt *gorm.DB, s scope.Scope) *gorm.DB {
	if f.Department != nil {
		stmt = stmt.Where(
			"stakeholder_id IN (?)",
			stmt.Session(&gorm.Session{NewDB: true}).
				Table("stakeholders").
				Select("id").
				Where("department = ?", *f.Department),
		)
	}
	if f.Category != nil {
		if s != scope.ValueChain {
			return stmt.Where("1 = 0")
		}
		stmt = stmt.Where("category = ?", *f.Category)
	}
	if f.FactorID != nil {
		stmt = stmt.Where("emission_factor_id = ?", *f.FactorID)
	}

	from, to := f.Bounds()
	if from != nil {
		stmt = stmt.Where("measurement_date >= ?", *from)
	}
	if to != nil {
		stmt = stmt.Where("measurement_date < ?", to.AddDate(0, 0, 1))
	}
	return stmt
}

// Filter returns the records matching the criteria, preserving order.
func (f FilterCriteria) Filter(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
