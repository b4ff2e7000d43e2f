// Package admin loads household seed files and applies them to storage.
//
// A seed file is TOML:
//
//	[household]
//	id = "casa"
//	name = "Casa"
//
//	[[category]]
//	name = "Seguro"
//	kind = "expense"
//	default = "300"
//	period_months = 3
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"hogar/internal/core"
)

type SeedFile struct {
	Household  HouseholdSeed  `toml:"household"`
	Categories []CategorySeed `toml:"category"`
}

type HouseholdSeed struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type CategorySeed struct {
	ID           string `toml:"id,omitempty"`
	Name         string `toml:"name"`
	Kind         string `toml:"kind"`
	Default      string `toml:"default,omitempty"`
	PeriodMonths int    `toml:"period_months,omitempty"`
	SortOrder    int    `toml:"sort_order,omitempty"`
}

// Seeder is the storage surface a seed is applied through.
type Seeder interface {
	EnsureHousehold(ctx context.Context, id, name string) error
	ListCategories(ctx context.Context, householdID string) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
}

// ApplyResult reports what a seed changed.
type ApplyResult struct {
	Created []core.Category
	Skipped []string
	// DefaultTotal sums the per-occurrence defaults of created expense categories.
	DefaultTotal decimal.Decimal
}

// LoadSeed reads and decodes a seed file. Unknown keys are an error so typos
// don't silently drop categories.
func LoadSeed(path string) (SeedFile, error) {
	var s SeedFile
	md, err := toml.DecodeFile(path, &s)
	if err != nil {
		return SeedFile{}, fmt.Errorf("decode seed %s: %w", path, err)
	}
	if err := checkUndecoded(md); err != nil {
		return SeedFile{}, fmt.Errorf("seed %s: %w", path, err)
	}
	return s, nil
}

// ParseSeed decodes seed content already in memory.
func ParseSeed(data string) (SeedFile, error) {
	var s SeedFile
	md, err := toml.Decode(data, &s)
	if err != nil {
		return SeedFile{}, fmt.Errorf("decode seed: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return SeedFile{}, err
	}
	return s, nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("unknown keys %s", strings.Join(keys, ", "))
}

// ToCategories converts the seed entries to domain categories for the seed's
// household, validating each one.
func (s SeedFile) ToCategories() ([]core.Category, error) {
	if strings.TrimSpace(s.Household.ID) == "" {
		return nil, core.ErrEmptyHousehold
	}
	out := make([]core.Category, 0, len(s.Categories))
	var errs []error
	for i, cs := range s.Categories {
		c := core.Category{
			ID:           cs.ID,
			HouseholdID:  s.Household.ID,
			Name:         strings.TrimSpace(cs.Name),
			Kind:         core.Kind(strings.ToLower(strings.TrimSpace(cs.Kind))),
			PeriodMonths: cs.PeriodMonths,
			SortOrder:    cs.SortOrder,
		}
		if c.SortOrder == 0 {
			c.SortOrder = i
		}
		if cs.Default != "" {
			amount, err := core.ParseAmount(cs.Default)
			if err != nil {
				errs = append(errs, fmt.Errorf("category %q: default %q: %w", cs.Name, cs.Default, err))
				continue
			}
			c.DefaultAmount = decimal.NewNullDecimal(amount)
		}
		if err := c.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", cs.Name, err))
			continue
		}
		out = append(out, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

// Apply ensures the household exists and creates every seed category whose
// name is not already taken. Re-applying the same seed is a no-op.
func Apply(ctx context.Context, repo Seeder, s SeedFile) (ApplyResult, error) {
	cats, err := s.ToCategories()
	if err != nil {
		return ApplyResult{}, err
	}
	name := s.Household.Name
	if name == "" {
		name = s.Household.ID
	}
	if err := repo.EnsureHousehold(ctx, s.Household.ID, name); err != nil {
		return ApplyResult{}, err
	}

	existing, err := repo.ListCategories(ctx, s.Household.ID)
	if err != nil {
		return ApplyResult{}, err
	}
	taken := make(map[string]bool, len(existing))
	for _, c := range existing {
		taken[strings.ToLower(c.Name)] = true
	}

	var res ApplyResult
	var defaults []decimal.Decimal
	for _, c := range cats {
		if taken[strings.ToLower(c.Name)] {
			res.Skipped = append(res.Skipped, c.Name)
			continue
		}
		created, err := repo.CreateCategory(ctx, c)
		if err != nil {
			return res, fmt.Errorf("create %q: %w", c.Name, err)
		}
		taken[strings.ToLower(c.Name)] = true
		res.Created = append(res.Created, created)
		if created.IsExpense() && created.DefaultAmount.Valid {
			defaults = append(defaults, created.DefaultAmount.Decimal)
		}
	}
	res.DefaultTotal = core.SumAmounts(defaults)
	return res, nil
}
