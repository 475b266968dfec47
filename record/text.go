// Package record holds the documents rendered by edenpdf: customs dossiers
// and commercial invoices, decoded from the JSON shapes stored by the
// front office.
//
// Scalars in those documents are loosely typed: a field may hold a string,
// a number, a boolean or null depending on the form that produced it. Text
// and amount decoding accept all of them.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/edentir/edenpdf"
	"github.com/shopspring/decimal"
)

// Text is a scalar field rendered as a string.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	case 't', 'f':
		v, err := strconv.ParseBool(string(b))
		if err != nil {
			return fmt.Errorf("%w: text %s", edenpdf.ErrMalformedRecord, b)
		}
		*t = Text(strconv.FormatBool(v))
	case '{', '[':
		return fmt.Errorf("%w: text field holds %s", edenpdf.ErrMalformedRecord, kindOf(b))
	default:
		// Numbers keep their JSON spelling so 12.50 stays 12.50.
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("%w: text %s", edenpdf.ErrMalformedRecord, b)
		}
		*t = Text(n.String())
	}
	return nil
}

// String returns the text with surrounding whitespace removed.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Amount is a monetary value decoded from a JSON number or numeric string.
// Empty strings and null decode to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount parses s as a decimal amount.
func NewAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, nil
	}
	// Accept the French decimal comma used in some hand-typed amounts.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: amount %q", edenpdf.ErrMalformedRecord, s)
	}
	return Amount{d}, nil
}

// MustAmount is like NewAmount but panics on error. It is meant for tests
// and literal tables.
func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = Amount{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := NewAmount(s)
		if err != nil {
			return err
		}
		*a = v
		return nil
	}
	if b[0] == '{' || b[0] == '[' || b[0] == 't' || b[0] == 'f' {
		return fmt.Errorf("%w: amount field holds %s", edenpdf.ErrMalformedRecord, kindOf(b))
	}
	v, err := NewAmount(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON writes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// Fixed3 formats the amount with exactly three decimals, the millime
// precision of the Tunisian dinar.
func (a Amount) Fixed3() string { return a.Decimal.StringFixed(3) }

func kindOf(b []byte) string {
	switch b[0] {
	case '{':
		return "an object"
	case '[':
		return "an array"
	default:
		return "a boolean"
	}
}
