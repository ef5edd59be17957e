// Package sql screens values that are spliced into warehouse statements as
// string literals (S3 locations, role ARNs) before any statement is built.
package sql

import (
	"sort"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult describes a value that failed screening.
type InjectionCheckResult struct {
	Name        string // configuration key of the value
	Value       string // the offending value
	Fingerprint string // libinjection fingerprint, empty for quote violations
	Reason      string
}

// CheckLiteralValue reports whether value is unsafe to splice between single
// quotes. A value is unsafe when it contains a single quote (it would close
// the literal) or when libinjection recognizes a SQL injection pattern.
// Returns nil for safe values.
//
// Example:
//
//	CheckLiteralValue("s3.log_data", "s3://udacity-dend/log_data")  // nil
//	CheckLiteralValue("iam_role.arn", "x' CREDENTIALS 'y")           // quote
//	CheckLiteralValue("s3.song_data", "1 UNION SELECT * FROM t")     // injection
func CheckLiteralValue(name, value string) *InjectionCheckResult {
	if strings.Contains(value, "'") {
		return &InjectionCheckResult{
			Name:   name,
			Value:  value,
			Reason: "contains a single quote",
		}
	}

	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if isSQLi {
		return &InjectionCheckResult{
			Name:        name,
			Value:       value,
			Fingerprint: string(fingerprint),
			Reason:      "matches a SQL injection pattern",
		}
	}

	return nil
}

// CheckLiteralValues screens every value and returns the failures sorted by
// name. Returns an empty slice if all values are clean.
func CheckLiteralValues(values map[string]string) []*InjectionCheckResult {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*InjectionCheckResult
	for _, name := range names {
		if result := CheckLiteralValue(name, values[name]); result != nil {
			results = append(results, result)
		}
	}
	return results
}
