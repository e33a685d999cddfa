package whatsapp

import (
	"testing"
	"time"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "four digit year", input: "25/12/2023", want: "2023-12-25"},
		{name: "two digit year below pivot", input: "5/1/23", want: "2023-01-05"},
		{name: "two digit year zero", input: "1/1/00", want: "2000-01-01"},
		{name: "two digit year at pivot", input: "1/1/30", want: "2030-01-01"},
		{name: "two digit year above pivot", input: "1/1/31", want: "1931-01-01"},
		{name: "two digit year ninety nine", input: "1/1/99", want: "1999-01-01"},
		{name: "missing component", input: "25/12", wantErr: true},
		{name: "too many components", input: "25/12/20/23", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := normalizeDate(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("normalizeDate(%q) expected error, got %q", tc.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeDate(%q) unexpected error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("normalizeDate(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "morning with meridiem", input: "10:30 AM", want: "10:30:00"},
		{name: "afternoon with meridiem", input: "2:45 PM", want: "14:45:00"},
		{name: "noon", input: "12:00 PM", want: "12:00:00"},
		{name: "midnight", input: "12:00 AM", want: "00:00:00"},
		{name: "meridiem with seconds", input: "10:30:45 pm", want: "22:30:45"},
		{name: "twenty four hour without seconds", input: "22:15", want: "22:15:00"},
		{name: "twenty four hour with seconds", input: "22:15:30", want: "22:15:30"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := normalizeTime(tc.input); got != tc.want {
				t.Errorf("normalizeTime(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestCombineTimestamp(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return fixed }

	t.Run("valid parts", func(t *testing.T) {
		t.Parallel()

		got := combineTimestamp("2023-12-25", "14:45:00", now)
		want := time.Date(2023, 12, 25, 14, 45, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("combineTimestamp = %v, want %v", got, want)
		}
	})

	t.Run("impossible calendar values fall back to now", func(t *testing.T) {
		t.Parallel()

		got := combineTimestamp("2023-13-45", "99:99:00", now)
		if !got.Equal(fixed) {
			t.Errorf("combineTimestamp = %v, want fallback %v", got, fixed)
		}
	})
}
