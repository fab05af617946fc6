package match

import "testing"

func TestStrict(t *testing.T) {
	tests := []struct {
		name     string
		spoken   string
		expected string
		want     bool
	}{
		{
			name:     "exact after cleaning",
			spoken:   "cricket!",
			expected: "Cricket",
			want:     true,
		},
		{
			name:     "containment",
			spoken:   "the cricket",
			expected: "cricket",
			want:     true,
		},
		{
			name:     "one edit allowed for short word",
			spoken:   "cet",
			expected: "cat",
			want:     true,
		},
		{
			name:     "two edits rejected for short word",
			spoken:   "cut",
			expected: "cab",
			want:     false,
		},
		{
			name:     "two edits allowed for longer word",
			spoken:   "beutifl",
			expected: "beautiful",
			want:     true,
		},
		{
			name:     "three edits rejected for longer word",
			spoken:   "botafol",
			expected: "beautiful",
			want:     false,
		},
		{
			name:     "no response placeholder never matches",
			spoken:   "",
			expected: "cricket",
			want:     false,
		},
		{
			name:     "unrelated word",
			spoken:   "banana",
			expected: "cricket",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Strict(tt.spoken, tt.expected); got != tt.want {
				t.Errorf("Strict(%q, %q) = %v, want %v", tt.spoken, tt.expected, got, tt.want)
			}
		})
	}
}
