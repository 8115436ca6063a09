package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/sandistd/carbon-footprint-app/internal/emission/domain"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	stakeholderdomain "github.com/sandistd/carbon-footprint-app/internal/stakeholder/domain"
	"github.com/sandistd/carbon-footprint-app/pkg/db/pagination"
	"gorm.io/gorm"
)

const cursorDateLayout = "2006-01-02"

var errUnknownScope = errors.New("unknown scope")

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) GetFactor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*factordomain.EmissionFactor, error) {
	var factor factordomain.EmissionFactor
	err := db.WithContext(ctx).Where("id = ?", id).Take(&factor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &factor, nil
}

func (r *repo) GetStakeholder(ctx context.Context, db *gorm.DB, id snowflake.ID) (*stakeholderdomain.Stakeholder, error) {
	var stakeholder stakeholderdomain.Stakeholder
	err := db.WithContext(ctx).Where("id = ?", id).Take(&stakeholder).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stakeholder, nil
}

func (r *repo) ListRecords(ctx context.Context, db *gorm.DB, s scope.Scope, filter domain.FilterCriteria) ([]domain.Record, error) {
	stmt := filter.Apply(db.WithContext(ctx).Table(s.Table()), s).
		Order("measurement_date desc, id desc")

	records, err := findRecords(stmt, s)
	if err != nil {
		return nil, err
	}
	if err := attach(ctx, db, records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListRecordsPage returns up to page.Limit()+1 rows so callers can tell
// whether another page exists.
func (r *repo) ListRecordsPage(ctx context.Context, db *gorm.DB, s scope.Scope, filter domain.FilterCriteria, page pagination.Pagination) ([]domain.Record, error) {
	stmt := filter.Apply(db.WithContext(ctx).Table(s.Table()), s)

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		date, err := time.Parse(cursorDateLayout, cursor.Date)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, domain.ErrInvalidPageToken
		}
		stmt = stmt.Where(
			"measurement_date < ? OR (measurement_date = ? AND id < ?)",
			date, date, id,
		)
	}

	stmt = stmt.
		Order("measurement_date desc, id desc").
		Limit(page.Limit() + 1)

	records, err := findRecords(stmt, s)
	if err != nil {
		return nil, err
	}
	if err := attach(ctx, db, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) FindRecord(ctx context.Context, db *gorm.DB, s scope.Scope, id snowflake.ID) (*domain.Record, error) {
	stmt := db.WithContext(ctx).Table(s.Table()).Where("id = ?", id).Limit(1)
	records, err := findRecords(stmt, s)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	if err := attach(ctx, db, records); err != nil {
		return nil, err
	}
	return &records[0], nil
}

func (r *repo) CreateRecord(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	row := domain.RowFromRecord(*record)
	if row == nil {
		return errUnknownScope
	}
	return db.WithContext(ctx).Create(row).Error
}

func (r *repo) UpdateRecord(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	row := domain.RowFromRecord(*record)
	if row == nil {
		return errUnknownScope
	}
	return db.WithContext(ctx).Save(row).Error
}

func (r *repo) DeleteRecord(ctx context.Context, db *gorm.DB, s scope.Scope, id snowflake.ID) error {
	row := domain.NewRow(s)
	if row == nil {
		return errUnknownScope
	}
	return db.WithContext(ctx).Where("id = ?", id).Delete(row).Error
}

func (r *repo) ListDepartments(ctx context.Context, db *gorm.DB) ([]string, error) {
	var departments []string
	err := db.WithContext(ctx).
		Model(&stakeholderdomain.Stakeholder{}).
		Where("department IS NOT NULL AND department <> ?", "").
		Distinct("department").
		Order("department asc").
		Pluck("department", &departments).Error
	if err != nil {
		return nil, err
	}
	if departments == nil {
		departments = []string{}
	}
	return departments, nil
}

// ListAvailableYears groups measurement dates by calendar year in memory so
// no dialect specific date function is needed.
func (r *repo) ListAvailableYears(ctx context.Context, db *gorm.DB) ([]int, error) {
	seen := map[int]struct{}{}
	for _, s := range scope.All {
		var dates []time.Time
		err := db.WithContext(ctx).
			Table(s.Table()).
			Distinct("measurement_date").
			Pluck("measurement_date", &dates).Error
		if err != nil {
			return nil, err
		}
		for _, d := range dates {
			seen[d.UTC().Year()] = struct{}{}
		}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

func findRecords(stmt *gorm.DB, s scope.Scope) ([]domain.Record, error) {
	switch s {
	case scope.Direct:
		return scanRows[domain.DirectEmission](stmt)
	case scope.Energy:
		return scanRows[domain.EnergyEmission](stmt)
	case scope.ValueChain:
		return scanRows[domain.ValueChainEmission](stmt)
	default:
		return nil, errUnknownScope
	}
}

func scanRows[T domain.Row](stmt *gorm.DB) ([]domain.Record, error) {
	var rows []T
	if err := stmt.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record())
	}
	return out, nil
}

// attach loads the factors and stakeholders referenced by records in two
// batched queries.
func attach(ctx context.Context, db *gorm.DB, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	factorIDs := map[snowflake.ID]struct{}{}
	stakeholderIDs := map[snowflake.ID]struct{}{}
	for _, rec := range records {
		factorIDs[rec.EmissionFactorID] = struct{}{}
		if rec.StakeholderID != nil {
			stakeholderIDs[*rec.StakeholderID] = struct{}{}
		}
	}

	factors := map[snowflake.ID]*factordomain.EmissionFactor{}
	if len(factorIDs) > 0 {
		var items []factordomain.EmissionFactor
		if err := db.WithContext(ctx).Where("id IN ?", keys(factorIDs)).Find(&items).Error; err != nil {
			return err
		}
		for i := range items {
			factors[items[i].ID] = &items[i]
		}
	}

	stakeholders := map[snowflake.ID]*stakeholderdomain.Stakeholder{}
	if len(stakeholderIDs) > 0 {
		var items []stakeholderdomain.Stakeholder
		if err := db.WithContext(ctx).Where("id IN ?", keys(stakeholderIDs)).Find(&items).Error; err != nil {
			return err
		}
		for i := range items {
			stakeholders[items[i].ID] = &items[i]
		}
	}

	for i := range records {
		records[i].Factor = factors[records[i].EmissionFactorID]
		if id := records[i].StakeholderID; id != nil {
			records[i].Stakeholder = stakeholders[*id]
		}
	}
	return nil
}

func keys(set map[snowflake.ID]struct{}) []snowflake.ID {
	out := make([]snowflake.ID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}
