package stub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/freshxpress/dashboard/internal/models"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML fixture loaded into a stub at startup. Farmer entries use
// the API field names (full_name, is_verify, ...).
type Seed struct {
	Accounts []SeedAccount    `yaml:"accounts"`
	Farmers  []map[string]any `yaml:"farmers"`
}

type SeedAccount struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// LoadSeed parses the fixture at path.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// Apply loads the seed into s.
func (seed *Seed) Apply(s *Server) error {
	for _, a := range seed.Accounts {
		if err := s.AddAccount(a.Email, a.Password); err != nil {
			return fmt.Errorf("account %s: %w", a.Email, err)
		}
	}
	for i, raw := range seed.Farmers {
		// Round-trip through JSON so the fixture shares the wire field names.
		b, err := json.Marshal(raw)
		if err != nil {
			return fmt.Errorf("farmer %d: %w", i, err)
		}
		var f models.Farmer
		if err := json.Unmarshal(b, &f); err != nil {
			return fmt.Errorf("farmer %d: %w", i, err)
		}
		s.AddFarmer(f)
	}
	return nil
}

// DefaultSeed is used when no fixture is given.
func DefaultSeed() *Seed {
	farmer := func(id, name string, phone int64, state string, verified bool) map[string]any {
		return map[string]any{
			"id":             id,
			"full_name":      name,
			"contact_number": phone,
			"state":          state,
			"is_verify":      verified,
		}
	}
	farmers := []map[string]any{
		{
			"id":                   "f3a9c2d1-7b44-4e0f-9a51-2c1d8e6b0a11",
			"full_name":            "Ravi Kumar",
			"contact_number":       9876543210,
			"email":                "ravi@example.com",
			"crops_grown":          []string{"Paddy", "Sugarcane"},
			"farming_type":         "Organic",
			"irrigation_method":    "Drip",
			"village":              "Hosakote",
			"taluk":                "Hosakote",
			"district":             "Bengaluru Rural",
			"state":                "Karnataka",
			"pin_code":             "562114",
			"latitude":             13.0707,
			"longitude":            77.7982,
			"payment_method":       "UPI",
			"upi_id":               "ravi@upi",
			"land_ownership_proof": "https://example.com/docs/ravi-land.pdf",
			"is_verify":            false,
		},
		farmer("0b7e5d52-1f38-4b8e-8f7e-6c2a9d4e3b22", "Lakshmi Devi", 9123456780, "Tamil Nadu", true),
		farmer("5c1f0e9a-2d6b-4a73-b8c4-9e0d1f2a3c33", "Suresh Patil", 9988776655, "Maharashtra", false),
		farmer("9d2a4b6c-8e1f-4c3d-a5b7-0f1e2d3c4b44", "Anita Sharma", 9012345678, "Punjab", true),
	}
	return &Seed{
		Accounts: []SeedAccount{{Email: "admin@freshxpress.in", Password: "freshxpress"}},
		Farmers:  farmers,
	}
}
