// sizeconfig.go: human-friendly capacity parsing
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize converts size strings like "100MB", "1GB", "64KB" to a
// byte count. Supports case-insensitive input and single-letter units
// (K, M, G, T). Zero allocations beyond the string operations
// strings.ToUpper/HasSuffix themselves require.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("ringalloc: empty size string")
	}

	if val, err := strconv.ParseInt(s, 10, 64); err == nil {
		return val, nil
	}

	upper := strings.ToUpper(s)

	var multiplier int64
	var numStr string

	switch {
	case strings.HasSuffix(upper, "KB"):
		multiplier = 1024
		numStr = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "MB"):
		multiplier = 1024 * 1024
		numStr = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "TB"):
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "K"):
		multiplier = 1024
		numStr = upper[:len(upper)-1]
	case strings.HasSuffix(upper, "M"):
		multiplier = 1024 * 1024
		numStr = upper[:len(upper)-1]
	case strings.HasSuffix(upper, "G"):
		multiplier = 1024 * 1024 * 1024
		numStr = upper[:len(upper)-1]
	case strings.HasSuffix(upper, "T"):
		multiplier = 1024 * 1024 * 1024 * 1024
		numStr = upper[:len(upper)-1]
	default:
		return 0, fmt.Errorf("ringalloc: unknown size suffix in %q (supported: KB/K, MB/M, GB/G, TB/T)", s)
	}

	val, err := strconv.ParseInt(numStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ringalloc: invalid size number in %q: %v", s, err)
	}

	result := val * multiplier
	if result < 0 {
		return 0, fmt.Errorf("ringalloc: size %q too large", s)
	}

	return result, nil
}

// NewFromSize builds a Ring whose backing capacity is given by a
// human-friendly size string, e.g. "64KB" or "2MB".
func NewFromSize(s string) (*Ring, error) {
	bytes, err := ParseSize(s)
	if err != nil {
		return nil, err
	}
	if bytes <= 0 || bytes > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("ringalloc: size %q out of range: %w", s, ErrOutOfRange)
	}
	return New(int(bytes))
}
