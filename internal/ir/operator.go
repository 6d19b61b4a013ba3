package ir

import (
	"fmt"
	"strings"
)

// Operator is the comparison applied to the value a criterion's path reaches.
//
// The set is closed. GT/GTE/LT/LTE apply only to numeric criteria,
// CONTAINS/STARTS_WITH/ENDS_WITH only to textual ones, and EQ to both
// (lowered differently for each).
type Operator int

const (
	// OpNone means the criterion is a bare existence check.
	OpNone Operator = iota
	OpEQ
	OpGT
	OpGTE
	OpLT
	OpLTE
	OpContains
	OpStartsWith
	OpEndsWith
)

var operatorNames = [...]string{
	OpNone:       "",
	OpEQ:         "EQ",
	OpGT:         "GT",
	OpGTE:        "GTE",
	OpLT:         "LT",
	OpLTE:        "LTE",
	OpContains:   "CONTAINS",
	OpStartsWith: "STARTS_WITH",
	OpEndsWith:   "ENDS_WITH",
}

// operatorAliases maps symbolic spellings accepted by ParseOperator.
var operatorAliases = map[string]Operator{
	"=":  OpEQ,
	"==": OpEQ,
	">":  OpGT,
	">=": OpGTE,
	"<":  OpLT,
	"<=": OpLTE,
}

// String returns the canonical upper-case name ("" for OpNone).
func (o Operator) String() string {
	if o < 0 || int(o) >= len(operatorNames) {
		return fmt.Sprintf("Operator(%d)", int(o))
	}
	return operatorNames[o]
}

// Valid reports whether o is one of the declared operators, OpNone included.
func (o Operator) Valid() bool {
	return o >= OpNone && o <= OpEndsWith
}

// IsNumericOnly reports whether o may only be applied to numeric criteria.
func (o Operator) IsNumericOnly() bool {
	switch o {
	case OpGT, OpGTE, OpLT, OpLTE:
		return true
	}
	return false
}

// IsTextualOnly reports whether o may only be applied to textual criteria.
func (o Operator) IsTextualOnly() bool {
	switch o {
	case OpContains, OpStartsWith, OpEndsWith:
		return true
	}
	return false
}

// ParseOperator parses an operator name (case-insensitive) or symbol.
// The empty string parses to OpNone.
func ParseOperator(s string) (Operator, error) {
	s = strings.TrimSpace(s)
	if op, ok := operatorAliases[s]; ok {
		return op, nil
	}
	upper := strings.ToUpper(s)
	for i, name := range operatorNames {
		if name == upper {
			return Operator(i), nil
		}
	}
	return OpNone, fmt.Errorf("unknown operator %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Operator) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid operator %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// JSON and YAML decoding both go through it.
func (o *Operator) UnmarshalText(text []byte) error {
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
