// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package assign parses register assignment lists like
//
//	"4=HSPID, 5..7=256, 8..9=0x3e..0x3f"
//
// Either side of an assignment can be a numeric range a..b, expanded to
// individual numbers.
//
package assign

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MaxRange is the maximum number of elements in a range.
//
const MaxRange = 256

// Pair is a single key=value assignment.
//
type Pair struct {
	Key   string
	Value string
}

// Parse parses a comma separated list of key=value assignments and expands
// ranges. Ranges on both sides are expanded pairwise and must have the same
// length. A range key with a single value assigns that value to all keys.
//
func Parse(s string) ([]Pair, error) {
	var r []Pair
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	for _, a := range strings.Split(s, ",") {
		a = strings.TrimSpace(a)
		i := strings.IndexRune(a, '=')
		if i <= 0 || i == len(a)-1 {
			return nil, errors.Errorf("invalid assignment %q", a)
		}
		k, v := strings.TrimSpace(a[:i]), strings.TrimSpace(a[i+1:])
		ks, err := expandRange(k)
		if err != nil {
			return nil, errors.Wrap(err, "expand key "+k)
		}
		vs, err := expandRange(v)
		if err != nil {
			return nil, errors.Wrap(err, "expand value "+v)
		}
		switch {
		case len(ks) == len(vs):
			for i := range ks {
				r = append(r, Pair{ks[i], vs[i]})
			}
		case len(vs) == 1:
			for _, k := range ks {
				r = append(r, Pair{k, v})
			}
		default:
			return nil, errors.New("range length mismatch in assignment " + a)
		}
	}
	return r, nil
}

func expandRange(s string) ([]string, error) {
	i := strings.Index(s, "..")
	if i < 0 {
		return []string{s}, nil
	}
	start, err := Int(s[:i])
	if err != nil {
		return nil, err
	}
	end, err := Int(s[i+2:])
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, errors.Errorf("empty range %s", s)
	}
	if end-start >= MaxRange {
		return nil, errors.Errorf("range %s longer than %d", s, MaxRange)
	}
	r := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, strconv.Itoa(i))
	}
	return r, nil
}

// Int parses a decimal, hexadecimal (0x), octal (0o) or binary (0b) integer.
//
func Int(s string) (int, error) {
	n, err := strconv.ParseInt(s, 0, 0)
	if err != nil {
		return 0, errors.Errorf("invalid number %q", s)
	}
	return int(n), nil
}

// Bool parses a boolean value. Integers are true if not 0.
//
func Bool(s string) (bool, error) {
	if n, err := strconv.ParseInt(s, 0, 0); err == nil {
		return n != 0, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.Errorf("invalid boolean %q", s)
	}
	return b, nil
}
