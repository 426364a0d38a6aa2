// Package classify assigns a bookkeeping category to normalized invoices and a
// cost account to each of their lines.
//
// Vendor rules are tried first against the upper-cased vendor name, then
// keyword rules against the lower-cased line descriptions. Rules are ordered:
// the first match wins. Invoices matching no rule stay "Pending review".
package classify

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"invoicenorm/internal/logger"
	"invoicenorm/pkg/models"
)

// ErrInvalidRules is returned when a rules file is malformed.
var ErrInvalidRules = errors.New("invalid classification rules")

// Rule maps a substring to a category.
type Rule struct {
	Match    string `yaml:"match" json:"match"`
	Category string `yaml:"category" json:"category"`
}

// AccountRule maps a category to its cost account.
type AccountRule struct {
	Category string `yaml:"category" json:"category"`
	Account  string `yaml:"account" json:"account"`
}

// Rules is the classification table.
type Rules struct {
	Vendors        []Rule        `yaml:"vendors" json:"vendors"`
	Keywords       []Rule        `yaml:"keywords" json:"keywords"`
	Accounts       []AccountRule `yaml:"accounts" json:"accounts"`
	DefaultAccount string        `yaml:"default_account" json:"default_account"`
}

// DefaultRules returns the built-in table for Andorran suppliers.
func DefaultRules() Rules {
	return Rules{
		Vendors: []Rule{
			{Match: "FEDA", Category: "Utilities"},
			{Match: "ANDORRA TELECOM", Category: "Telecom"},
			{Match: "AMAZON", Category: "Office supplies"},
			{Match: "GOOGLE", Category: "IT services"},
			{Match: "MICROSOFT", Category: "IT services"},
		},
		Keywords: []Rule{
			{Match: "hosting", Category: "IT services"},
			{Match: "domini", Category: "IT services"},
			{Match: "dominio", Category: "IT services"},
			{Match: "manteniment", Category: "Maintenance"},
			{Match: "mantenimiento", Category: "Maintenance"},
			{Match: "transport", Category: "Logistics"},
			{Match: "neteja", Category: "General services"},
			{Match: "limpieza", Category: "General services"},
		},
		Accounts: []AccountRule{
			{Category: "IT services", Account: "629000"},
			{Category: "Utilities", Account: "628000"},
		},
		DefaultAccount: "620000",
	}
}

// LoadRules reads a YAML rules file. Sections left out of the file keep their
// built-in defaults.
func LoadRules(path string) (Rules, error) {
	const op = "LoadRules"

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: failed to read rules file: %w", op, err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Rules{}, fmt.Errorf("%s: %w: %v", op, ErrInvalidRules, err)
	}

	rules := DefaultRules()
	if loaded.Vendors != nil {
		rules.Vendors = loaded.Vendors
	}
	if loaded.Keywords != nil {
		rules.Keywords = loaded.Keywords
	}
	if loaded.Accounts != nil {
		rules.Accounts = loaded.Accounts
	}
	if loaded.DefaultAccount != "" {
		rules.DefaultAccount = loaded.DefaultAccount
	}

	if err := rules.validate(); err != nil {
		return Rules{}, fmt.Errorf("%s: %w", op, err)
	}
	return rules, nil
}

func (r Rules) validate() error {
	for i, rule := range append(append([]Rule{}, r.Vendors...), r.Keywords...) {
		if strings.TrimSpace(rule.Match) == "" || strings.TrimSpace(rule.Category) == "" {
			return fmt.Errorf("%w: rule %d needs both match and category", ErrInvalidRules, i+1)
		}
	}
	for _, a := range r.Accounts {
		if a.Category == "" || a.Account == "" {
			return fmt.Errorf("%w: account rules need both category and account", ErrInvalidRules)
		}
	}
	if r.DefaultAccount == "" {
		return fmt.Errorf("%w: default_account is required", ErrInvalidRules)
	}
	return nil
}

// Classifier applies a rules table to invoice records.
type Classifier struct {
	rules Rules
	log   zerolog.Logger
}

// New creates a classifier over rules.
func New(rules Rules) *Classifier {
	return &Classifier{
		rules: rules,
		log:   logger.WithComponent("classify"),
	}
}

// Category returns the category of rec, or models.PendingReview.
func (c *Classifier) Category(rec *models.InvoiceRecord) string {
	if name := models.Deref(rec.Vendor.Name); name != "" {
		upper := strings.ToUpper(name)
		for _, rule := range c.rules.Vendors {
			if strings.Contains(upper, strings.ToUpper(rule.Match)) {
				return rule.Category
			}
		}
	}

	descriptions := make([]string, 0, len(rec.Lines))
	for _, l := range rec.Lines {
		descriptions = append(descriptions, models.Deref(l.Description))
	}
	text := strings.ToLower(strings.Join(descriptions, " "))
	for _, rule := range c.rules.Keywords {
		if strings.Contains(text, strings.ToLower(rule.Match)) {
			return rule.Category
		}
	}
	return models.PendingReview
}

// Account returns the cost account booked for a category.
func (c *Classifier) Account(category string) string {
	for _, a := range c.rules.Accounts {
		if a.Category == category {
			return a.Account
		}
	}
	return c.rules.DefaultAccount
}

// Classify sets the record category and the cost account of every line.
func (c *Classifier) Classify(rec *models.InvoiceRecord) {
	category := c.Category(rec)
	rec.ClassificationCategory = &category

	account := c.Account(category)
	for i := range rec.Lines {
		a := account
		rec.Lines[i].CostAccountCode = &a
	}

	c.log.Debug().
		Str("vendor", models.Deref(rec.Vendor.Name)).
		Str("category", category).
		Str("account", account).
		Msg("Invoice classified")
}
