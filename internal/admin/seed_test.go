package admin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"hogar/internal/core"
)

const casaSeed = `
[household]
id = "casa"
name = "Casa"

[[category]]
name = "Comida"
kind = "expense"
default = "200"

[[category]]
name = "Seguro"
kind = "Expense"
default = "300,50"
period_months = 3

[[category]]
name = "Sueldo"
kind = "income"
`

type fakeSeeder struct {
	households map[string]string
	categories []core.Category
	createErr  error
}

func newFakeSeeder() *fakeSeeder {
	return &fakeSeeder{households: map[string]string{}}
}

func (f *fakeSeeder) EnsureHousehold(_ context.Context, id, name string) error {
	if _, ok := f.households[id]; !ok {
		f.households[id] = name
	}
	return nil
}

func (f *fakeSeeder) ListCategories(_ context.Context, householdID string) ([]core.Category, error) {
	var out []core.Category
	for _, c := range f.categories {
		if c.HouseholdID == householdID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeSeeder) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if f.createErr != nil {
		return core.Category{}, f.createErr
	}
	if c.ID == "" {
		c.ID = "cat-" + strings.ToLower(c.Name)
	}
	f.categories = append(f.categories, c)
	return c, nil
}

func TestParseSeed(t *testing.T) {
	s, err := ParseSeed(casaSeed)
	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}
	cats, err := s.ToCategories()
	if err != nil {
		t.Fatalf("ToCategories() error = %v", err)
	}
	if len(cats) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(cats))
	}
	if cats[1].Kind != core.KindExpense {
		t.Errorf("kind should be normalised, got %q", cats[1].Kind)
	}
	if !cats[1].DefaultAmount.Decimal.Equal(decimal.RequireFromString("300.5")) {
		t.Errorf("default = %s, want 300.5", cats[1].DefaultAmount.Decimal)
	}
	if cats[2].DefaultAmount.Valid {
		t.Error("missing default must stay null")
	}
	if cats[2].SortOrder != 2 {
		t.Errorf("sort order should follow file order, got %d", cats[2].SortOrder)
	}
}

func TestParseSeedRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "[household]\nid = \"casa\"\ncolour = \"red\"\n"},
		{"not toml", "[household\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSeed(tt.data); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestToCategoriesValidation(t *testing.T) {
	tests := []struct {
		name string
		seed SeedFile
		want error
	}{
		{
			name: "missing household",
			seed: SeedFile{Categories: []CategorySeed{{Name: "Comida", Kind: "expense"}}},
			want: core.ErrEmptyHousehold,
		},
		{
			name: "negative default",
			seed: SeedFile{Household: HouseholdSeed{ID: "casa"}, Categories: []CategorySeed{{Name: "Comida", Kind: "expense", Default: "-5"}}},
			want: core.ErrInvalidAmount,
		},
		{
			name: "bad kind",
			seed: SeedFile{Household: HouseholdSeed{ID: "casa"}, Categories: []CategorySeed{{Name: "Comida", Kind: "gift"}}},
			want: core.ErrUnknownKind,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.seed.ToCategories()
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := ParseSeed(casaSeed)
	if err != nil {
		t.Fatalf("ParseSeed() error = %v", err)
	}
	repo := newFakeSeeder()

	first, err := Apply(ctx, repo, s)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(first.Created) != 3 || len(first.Skipped) != 0 {
		t.Fatalf("first apply created %d skipped %d", len(first.Created), len(first.Skipped))
	}
	if !first.DefaultTotal.Equal(decimal.RequireFromString("500.5")) {
		t.Errorf("DefaultTotal = %s, want 500.5", first.DefaultTotal)
	}
	if repo.households["casa"] != "Casa" {
		t.Errorf("household not created: %v", repo.households)
	}

	second, err := Apply(ctx, repo, s)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if len(second.Created) != 0 || len(second.Skipped) != 3 {
		t.Fatalf("second apply created %d skipped %d", len(second.Created), len(second.Skipped))
	}
	if !second.DefaultTotal.IsZero() {
		t.Errorf("nothing created, DefaultTotal = %s", second.DefaultTotal)
	}
}

func TestApplyPropagatesCreateError(t *testing.T) {
	s, _ := ParseSeed(casaSeed)
	repo := newFakeSeeder()
	repo.createErr = core.ErrHouseholdNotFound

	_, err := Apply(context.Background(), repo, s)
	if !errors.Is(err, core.ErrHouseholdNotFound) {
		t.Fatalf("error = %v, want ErrHouseholdNotFound", err)
	}
}

func TestLoadSeedFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "casa.toml")
	if err := os.WriteFile(path, []byte(casaSeed), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed() error = %v", err)
	}
	if s.Household.ID != "casa" || len(s.Categories) != 3 {
		t.Fatalf("unexpected seed: %+v", s)
	}

	if _, err := LoadSeed(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
