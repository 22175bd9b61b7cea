// sizeconfig_test.go
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import "testing"

func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "1024", want: 1024},
		{in: "64KB", want: 64 * 1024},
		{in: "2MB", want: 2 * 1024 * 1024},
		{in: "1GB", want: 1024 * 1024 * 1024},
		{in: "1TB", want: 1024 * 1024 * 1024 * 1024},
		{in: "64k", want: 64 * 1024},
		{in: "2m", want: 2 * 1024 * 1024},
		{in: "2mb", want: 2 * 1024 * 1024},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "10XB", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSize(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSize(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFromSize(t *testing.T) {
	r, err := NewFromSize("64KB")
	if err != nil {
		t.Fatalf("NewFromSize: %v", err)
	}
	defer r.Close()

	if _, err := r.Fixed(128); err != nil {
		t.Fatalf("Fixed on ring built from size string: %v", err)
	}
}

func TestNewFromSizeRejectsGarbage(t *testing.T) {
	if _, err := NewFromSize("not-a-size"); err == nil {
		t.Fatalf("NewFromSize(garbage) succeeded, want error")
	}
}
