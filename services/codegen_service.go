package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/martagon-studio/workshop-api/models"
)

// ErrMissingCatalogRefs is returned when an inventory record is created
// without a code and without the catalog references needed to generate one.
var ErrMissingCatalogRefs = errors.New("family and model references are required to generate a code")

// RawMaterialScope builds the code-sequence scope for a raw material,
// e.g. family "01" + model "MARTINA" -> "01-MARTINA"
func RawMaterialScope(family *models.Family, model *models.ProductModel) (string, error) {
	if family == nil || model == nil {
		return "", ErrMissingCatalogRefs
	}
	return family.Code + "-" + model.Code, nil
}

// ProductScope builds the code-sequence scope for a finished product,
// which is namespaced under the model code alone
func ProductScope(model *models.ProductModel) (string, error) {
	if model == nil {
		return "", ErrMissingCatalogRefs
	}
	return model.Code, nil
}

// NextCode hands out the next code for a scope, formatted as the scope
// segments joined with the zero-padded sequence number ("01-MARTINA-001").
// The sequence lives in a per-scope counter row incremented atomically, so
// concurrent creators on the same scope cannot be handed the same number and
// ordering stays numeric past three digits. When no counter row exists yet
// the sequence is seeded from the highest numeric suffix already present in
// table, so pre-existing rows continue their sequence.
//
// Must be called inside the transaction that persists the owning record:
// if the insert fails the counter increment rolls back with it.
func NextCode(tx *gorm.DB, scope, table string) (string, error) {
	n, err := nextSequence(tx, scope, table)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%03d", scope, n), nil
}

func nextSequence(tx *gorm.DB, scope, table string) (int, error) {
	res := tx.Model(&models.CodeSequence{}).
		Where("scope = ?", scope).
		Update("last_used", gorm.Expr("last_used + 1"))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		seed, err := maxExistingSuffix(tx, scope, table)
		if err != nil {
			return 0, err
		}
		seq := models.CodeSequence{Scope: scope, LastUsed: seed + 1}
		if err := tx.Create(&seq).Error; err != nil {
			if !IsUniqueViolation(err) {
				return 0, err
			}
			// Another creator seeded the counter first; fall back to the
			// plain increment.
			res = tx.Model(&models.CodeSequence{}).
				Where("scope = ?", scope).
				Update("last_used", gorm.Expr("last_used + 1"))
			if res.Error != nil {
				return 0, res.Error
			}
		} else {
			return seq.LastUsed, nil
		}
	}

	var seq models.CodeSequence
	if err := tx.Where("scope = ?", scope).First(&seq).Error; err != nil {
		return 0, err
	}
	return seq.LastUsed, nil
}

// maxExistingSuffix scans codes already in table under scope and returns the
// highest trailing numeric suffix, parsed as an integer (0 when the scope is
// empty). Parsing numerically avoids the classic trap of taking the
// lexicographic max, which diverges from the numeric max once the suffix
// outgrows its zero padding.
func maxExistingSuffix(tx *gorm.DB, scope, table string) (int, error) {
	var codes []string
	if err := tx.Table(table).
		Where("code LIKE ?", scope+"-%").
		Pluck("code", &codes).Error; err != nil {
		return 0, err
	}

	max := 0
	for _, code := range codes {
		parts := strings.Split(code, "-")
		n, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// Matches on the message text so it works with both PostgreSQL and SQLite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique")
}
