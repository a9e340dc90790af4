// Package normalize converts scraped table cell text into typed values.
//
// Float-valued fields and integer-valued fields treat blank cells
// differently: a blank float becomes 0.0 while a blank integer stays unset.
// Both policies are relied on by stored rows and must not be unified.
package normalize

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrHeightFormat is returned for heights not written as feet-inches.
	ErrHeightFormat = errors.New("height is not in feet-inches form")

	// ErrNotNumeric is returned for non-empty text that does not parse.
	ErrNotNumeric = errors.New("not a number")
)

// NormalizationError reports a cell whose text could not be converted.
type NormalizationError struct {
	Field string
	Value string
	Err   error
}

func (e *NormalizationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("normalize %q: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("normalize %s=%q: %v", e.Field, e.Value, e.Err)
}

func (e *NormalizationError) Unwrap() error {
	return e.Err
}

// WithField returns err labelled with the record field it was parsed for.
func WithField(err error, field string) error {
	var nerr *NormalizationError
	if errors.As(err, &nerr) {
		labelled := *nerr
		labelled.Field = field
		return &labelled
	}
	return err
}

var heightPattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// ToPercentOrZero parses a float cell, stripping one trailing "%".
// Blank or whitespace-only text yields 0.0.
func ToPercentOrZero(text string) (float64, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &NormalizationError{Value: text, Err: ErrNotNumeric}
	}
	return f, nil
}

// ToPercentage parses a shooting percentage onto the 0-100 scale.
// The source prints fractions such as ".512"; text with an explicit "%"
// is already on the percent scale.
func ToPercentage(text string) (float64, error) {
	f, err := ToPercentOrZero(text)
	if err != nil {
		return 0, err
	}
	if strings.HasSuffix(strings.TrimSpace(text), "%") || f > 1 {
		return f, nil
	}
	return math.Round(f*100*1e4) / 1e4, nil
}

// ToHeightInches converts "<feet>-<inches>" to total inches.
func ToHeightInches(text string) (int, error) {
	m := heightPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, &NormalizationError{Value: text, Err: ErrHeightFormat}
	}
	feet, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, &NormalizationError{Value: text, Err: err}
	}
	inches, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, &NormalizationError{Value: text, Err: err}
	}
	if inches >= 12 {
		return 0, &NormalizationError{Value: text, Err: ErrHeightFormat}
	}
	return feet*12 + inches, nil
}

// ToOptionalInt parses an integer cell strictly. Blank text stays unset.
func ToOptionalInt(text string) (sql.NullInt32, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return sql.NullInt32{}, nil
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return sql.NullInt32{}, &NormalizationError{Value: text, Err: ErrNotNumeric}
	}
	return sql.NullInt32{Int32: int32(n), Valid: true}, nil
}

// ToWeightPounds reads a weight cell such as "250" or "250 lb".
func ToWeightPounds(text string) (sql.NullInt32, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(s, "lbs"), "lb"))
	return ToOptionalInt(s)
}

// ToOptionalText trims a cell and leaves blank text unset.
func ToOptionalText(text string) sql.NullString {
	s := strings.Join(strings.Fields(text), " ")
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
