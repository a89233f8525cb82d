package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"public_id":    true,
	"total":        true,
	"payment_type": true,
	"status":       true,
}

// saleOrderClause builds the ORDER BY for a sale listing. id breaks ties so pages are stable.
func saleOrderClause(sortBy, sortOrder string) string {
	field := ValidateSortField(sortBy, SaleSortFields, "created_at")
	dir := ValidateSortOrder(sortOrder)
	return field + " " + dir + ", id " + dir
}
