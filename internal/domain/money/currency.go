package money

import "fmt"

// UnknownCurrencyError indicates a currency code missing from the exponent
// table. Without the exponent the minor-unit scale cannot be determined, so
// this is fatal rather than defaulted.
type UnknownCurrencyError struct {
	Code string
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

// Table maps ISO-4217 currency codes to their minor-unit exponent. It is
// built once at startup and treated as read-only afterwards, so lookups are
// safe from concurrent reconciliation calls.
type Table struct {
	exponents map[string]int32
}

// NewTable builds a currency table from code → exponent entries.
func NewTable(entries map[string]int32) Table {
	exps := make(map[string]int32, len(entries))
	for code, exp := range entries {
		exps[code] = exp
	}
	return Table{exponents: exps}
}

// Exponent returns the minor-unit exponent for the given currency code.
func (t Table) Exponent(code string) (int32, error) {
	exp, ok := t.exponents[code]
	if !ok {
		return 0, &UnknownCurrencyError{Code: code}
	}
	return exp, nil
}

// Len returns the number of currencies in the table.
func (t Table) Len() int {
	return len(t.exponents)
}
