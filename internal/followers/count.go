// Package followers parses audience sizes written the way creators write them
// ("10.5K", "1.2M", "12,345") into a canonical integer count.
package followers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var countRE = regexp.MustCompile(`-?[\d.]+[KkMmBb]?`)

// fromFloat rounds f to a count, rejecting values no int64 can hold.
func fromFloat(f float64) (int64, error) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, fmt.Errorf("invalid count %v", f)
	case f < 0:
		return 0, fmt.Errorf("negative count %v", f)
	case f >= math.MaxInt64:
		return 0, fmt.Errorf("count %v out of range", f)
	}
	return int64(math.Round(f)), nil
}

// Parse extracts the first count from text. Separators and spaces are ignored,
// K/M/B suffixes are expanded.
func Parse(text string) (int64, error) {
	clean := strings.ReplaceAll(text, " ", "")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "_", "")

	match := countRE.FindString(clean)
	if match == "" {
		return 0, fmt.Errorf("no count in %q", text)
	}
	if match[0] == '-' {
		return 0, fmt.Errorf("negative count in %q", text)
	}

	multiplier := 1.0
	switch match[len(match)-1] {
	case 'K', 'k':
		multiplier = 1e3
		match = match[:len(match)-1]
	case 'M', 'm':
		multiplier = 1e6
		match = match[:len(match)-1]
	case 'B', 'b':
		multiplier = 1e9
		match = match[:len(match)-1]
	}

	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", text, err)
	}
	n, err := fromFloat(f * multiplier)
	if err != nil {
		return 0, fmt.Errorf("parse count %q: %w", text, err)
	}
	return n, nil
}

// Count is a follower count that accepts either a JSON number or a display
// string on input and always encodes as a number.
type Count int64

func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*c = 0
			return nil
		}
		n, err := Parse(s)
		if err != nil {
			return err
		}
		*c = Count(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("followers: %w", err)
	}
	n, err := fromFloat(f)
	if err != nil {
		return fmt.Errorf("followers: %w", err)
	}
	*c = Count(n)
	return nil
}

func (c Count) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(c), 10), nil
}

// Format renders the count in the compact style used on listing cards.
func (c Count) Format() string {
	n := int64(c)
	switch {
	case n >= 1_000_000:
		return tenths(n/100_000) + "M"
	case n >= 1_000:
		return tenths(n/100) + "K"
	}
	return strconv.FormatInt(n, 10)
}

func tenths(v int64) string {
	if v%10 == 0 {
		return strconv.FormatInt(v/10, 10)
	}
	return strconv.FormatInt(v/10, 10) + "." + strconv.FormatInt(v%10, 10)
}
