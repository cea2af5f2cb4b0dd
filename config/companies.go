package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Company is one tenant served by this deployment.
type Company struct {
	Key         string `yaml:"key"`
	Name        string `yaml:"name"`
	VendorToken string `yaml:"vendor_token"`
}

type companiesFile struct {
	Companies []Company `yaml:"companies"`
}

// LoadCompanies reads the tenant list from path. When the file does not exist it falls back to the
// COMPANIES env var (comma separated keys) and finally to DEFAULT_COMPANY.
func LoadCompanies(path string) ([]Company, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return companiesFromEnv(), nil
	}
	return ParseCompanies(data)
}

// ParseCompanies decodes a companies YAML document, normalizing and deduplicating keys.
func ParseCompanies(data []byte) ([]Company, error) {
	var f companiesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse companies: %w", err)
	}
	seen := make(map[string]bool, len(f.Companies))
	out := make([]Company, 0, len(f.Companies))
	for _, c := range f.Companies {
		c.Key = NormalizeCompany(c.Key)
		if c.Key == "" {
			return nil, errors.New("parse companies: empty company key")
		}
		if seen[c.Key] {
			continue
		}
		seen[c.Key] = true
		out = append(out, c)
	}
	return out, nil
}

func companiesFromEnv() []Company {
	var out []Company
	seen := make(map[string]bool)
	for _, k := range strings.Split(os.Getenv("COMPANIES"), ",") {
		k = NormalizeCompany(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, Company{Key: k})
	}
	if len(out) == 0 {
		if def := NormalizeCompany(os.Getenv("DEFAULT_COMPANY")); def != "" {
			out = append(out, Company{Key: def})
		}
	}
	return out
}

// VendorTokenFor returns the company-specific vendor token, or fallback when none is configured.
func VendorTokenFor(companies []Company, company, fallback string) string {
	for _, c := range companies {
		if c.Key == company && c.VendorToken != "" {
			return c.VendorToken
		}
	}
	return fallback
}
