package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	factordomain "github.com/sandistd/carbon-footprint-app/internal/factor/domain"
	"github.com/sandistd/carbon-footprint-app/internal/scope"
	"gorm.io/gorm"
)

type defaultFactor struct {
	name        string
	scope       scope.Scope
	category    string
	factor      float64
	unit        string
	description string
	source      string
}

const (
	sourceGHGProtocol = "The Greenhouse Gas Protocol Initiative (2004)"
	sourceScope3      = "GHG Protocol Scope 3 Standard"
)

var defaultFactors = []defaultFactor{
	{"Solar (Diesel)", scope.Direct, "Stationary Combustion", 2.68, "kg CO2eq/Liter", "Diesel combustion in generator sets", sourceGHGProtocol},
	{"Bensin (Pertalite/Gasoline)", scope.Direct, "Mobile Combustion", 2.31, "kg CO2eq/Liter", "Gasoline combustion in operational vehicles", sourceGHGProtocol},
	{"Listrik PLN (Grid)", scope.Energy, "Purchased Electricity", 0.78, "kg CO2eq/KWh", "Average Indonesian grid electricity", "PLN/MEMR Grid Emission Factor"},
	{"Distribusi Hulu (Transport)", scope.ValueChain, "Kategori 4: Upstream Transportation", 0.15, "kg CO2eq/Km", "Upstream distribution transport", sourceScope3},
	{"Limbah B3", scope.ValueChain, "Kategori 5: Waste Generated in Operations", 1.5, "kg CO2eq/Kg", "Hazardous waste treatment", sourceScope3},
	{"Limbah Elektronik (E-waste)", scope.ValueChain, "Kategori 5: Waste Generated in Operations", 2.0, "kg CO2eq/Kg", "Electronic waste treatment", sourceScope3},
	{"Perjalanan Bisnis (Penerbangan)", scope.ValueChain, "Kategori 6: Business Travel", 0.25, "kg CO2eq/Km", "Business travel by air", sourceScope3},
	{"Perjalanan Bisnis (Darat)", scope.ValueChain, "Kategori 6: Business Travel", 0.12, "kg CO2eq/Km", "Business travel by land", sourceScope3},
	{"Perjalanan Karyawan (Commuting)", scope.ValueChain, "Kategori 7: Employee Commuting", 0.15, "kg CO2eq/Km", "Employee commuting", sourceScope3},
	{"Distribusi Hilir (Transport)", scope.ValueChain, "Kategori 9: Downstream Transportation", 0.18, "kg CO2eq/Km", "Downstream distribution transport", sourceScope3},
	{"Aset Sewa Hilir", scope.ValueChain, "Kategori 13: Downstream Leased Assets", 0.5, "kg CO2eq/Unit", "Downstream leased assets", sourceScope3},
}

// EnsureDefaultFactors inserts the reference emission factors into an empty
// factor table. It returns the number of factors inserted.
func EnsureDefaultFactors(ctx context.Context, db *gorm.DB, node *snowflake.Node, now time.Time) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	if node == nil {
		return 0, errors.New("seed id generator is required")
	}

	inserted := 0
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&factordomain.EmissionFactor{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		items := make([]factordomain.EmissionFactor, 0, len(defaultFactors))
		for _, f := range defaultFactors {
			category, description, source := f.category, f.description, f.source
			items = append(items, factordomain.EmissionFactor{
				ID:          node.Generate(),
				Name:        f.name,
				Scope:       f.scope,
				Category:    &category,
				Factor:      f.factor,
				Unit:        f.unit,
				Description: &description,
				Source:      &source,
				IsActive:    true,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		inserted = len(items)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
