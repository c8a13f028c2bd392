// Package parser turns a free-text purchase description plus optional
// explicit fields into a validated spend scenario.
package parser

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Fields are the candidate values an extractor pulled out of text.
// Nil / empty means "not found".
type Fields struct {
	Amount                    *decimal.Decimal
	Category                  string
	IsForeign                 *bool
	Currency                  string
	IncludeAnnualFeeProration bool
	MonthlySpendEstimate      *decimal.Decimal
}

// Extractor pulls candidate scenario fields out of free text.
type Extractor interface {
	Extract(ctx context.Context, message, fallbackCurrency string) (Fields, error)
}

// ScenarioParseError means no valid scenario could be resolved.
type ScenarioParseError struct {
	Reason string
	Err    error
}

func (e *ScenarioParseError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return e.Reason + ": " + e.Err.Error()
}

func (e *ScenarioParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err (or anything it wraps) is a ScenarioParseError.
func IsParseError(err error) bool {
	var pe *ScenarioParseError
	return errors.As(err, &pe)
}
