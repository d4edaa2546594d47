// Package parser extracts numeric tokens from incoming command lines.
//
// Numeric token wire format (host -> controller, no leading whitespace):
//
//	[+|-]digits[.digits]
//
// Scientific notation is not recognized: 'E' may be a G-code word on some
// systems, so it always terminates the token.
package parser

import "errors"

// ErrNoDigits reports that no digits were consumed at the cursor position.
// A bare sign or a lone decimal point is not a valid token.
var ErrNoDigits = errors.New("no digits in numeric token")

// maxDigits caps the digits folded into the integer accumulator. Eight matches
// the usable decimal precision of a single-precision float.
const maxDigits = 8

// ReadFloat parses one numeric token from line starting at pos and returns the
// value and the cursor just past the consumed token. On failure the cursor is
// returned unchanged.
//
// Digits beyond the cap are truncated, not rounded: on the integer side each
// extra digit bumps the exponent to preserve magnitude at the cost of its own
// value, on the decimal side extra digits are dropped outright. A second
// decimal point terminates the token; it is not an error.
func ReadFloat(line string, pos int) (float64, int, error) {
	ptr := pos

	// Capture initial sign character.
	isNegative := false
	if ptr < len(line) {
		switch line[ptr] {
		case '-':
			isNegative = true
			ptr++
		case '+':
			ptr++
		}
	}

	// Extract the number into a fast integer, tracking the decimal point as an
	// exponent value.
	var intValue uint32
	exponent := 0
	digits := 0
	isDecimal := false
	for ptr < len(line) {
		c := line[ptr]
		if c >= '0' && c <= '9' {
			digits++
			if digits <= maxDigits {
				if isDecimal {
					exponent--
				}
				intValue = intValue*10 + uint32(c-'0')
			} else if !isDecimal {
				exponent++ // drop overflow digits
			}
		} else if c == '.' && !isDecimal {
			isDecimal = true
		} else {
			break
		}
		ptr++
	}

	if digits == 0 {
		return 0, pos, ErrNoDigits
	}

	value := float64(intValue)

	// Apply the decimal exponent. For the expected range of E0 to E-4 this
	// performs no more than two multiplications.
	if value != 0 {
		for exponent <= -2 {
			value *= 0.01
			exponent += 2
		}
		if exponent < 0 {
			value *= 0.1
		} else if exponent > 0 {
			for ; exponent > 0; exponent-- {
				value *= 10.0
			}
		}
	}

	if isNegative {
		value = -value
	}
	return value, ptr, nil
}
