package textdiff

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"vlan 10", "vlan 10"},
		{"vlan  10", "vlan 10"},
		{"  vlan\t10  ", "vlan 10"},
		{"Gi0/1   up\t\tup", "Gi0/1 up up"},
		{"a\r\n b", "a b"},
		{"Name  Status", "Name Status"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"vlan  10",
		"\t\tinterface GigabitEthernet0/1\r",
		"  a  b  c  ",
		"no break space",
		"multi\nline\ntext",
	}

	for _, s := range inputs {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

func TestDiff_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		actual   []string
		expected string
		want     []Entry
	}{
		{
			name:     "exact multi-line match",
			actual:   []string{"vlan 10", "mode trunk"},
			expected: "vlan 10\nmode trunk",
			want:     nil,
		},
		{
			name:     "whitespace-insensitive match",
			actual:   []string{"vlan  10"},
			expected: "vlan 10",
			want:     nil,
		},
		{
			name:     "value mismatch",
			actual:   []string{"vlan 10"},
			expected: "vlan 20",
			want:     []Entry{{Actual: "vlan 10", Expected: "vlan 20"}},
		},
		{
			name:     "both empty",
			actual:   nil,
			expected: "",
			want:     nil,
		},
		{
			name:     "actual missing against expected",
			actual:   nil,
			expected: "vlan 10\nmode trunk",
			want: []Entry{
				{Actual: "", Expected: "vlan 10"},
				{Actual: "", Expected: "mode trunk"},
			},
		},
		{
			name:     "extra actual line mismatches",
			actual:   []string{"vlan 10", "shutdown"},
			expected: "vlan 10",
			want:     []Entry{{Actual: "shutdown", Expected: ""}},
		},
		{
			name:     "extra blank actual line is blank-equivalent",
			actual:   []string{"vlan 10", "   "},
			expected: "vlan 10",
			want:     nil,
		},
		{
			name:     "trailing newline in expected",
			actual:   []string{"vlan 10"},
			expected: "vlan 10\n",
			want:     nil,
		},
		{
			name:     "inserted line cascades",
			actual:   []string{"a", "x", "b", "c"},
			expected: "a\nb\nc",
			want: []Entry{
				{Actual: "x", Expected: "b"},
				{Actual: "b", Expected: "c"},
				{Actual: "c", Expected: ""},
			},
		},
		{
			name:     "original text preserved",
			actual:   []string{"  vlan   10 "},
			expected: "vlan\t20",
			want:     []Entry{{Actual: "  vlan   10 ", Expected: "vlan\t20"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.actual, tt.expected)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff(%q, %q) = %#v, want %#v", tt.actual, tt.expected, got, tt.want)
			}
		})
	}
}

// Diff is empty exactly when every padded position matches after
// normalization.
func TestDiff_EmptyIffAllPositionsMatch(t *testing.T) {
	pool := []string{"", " ", "vlan 10", "vlan  10", "vlan 20"}

	var cases [][]string
	cases = append(cases, nil)
	for _, a := range pool {
		cases = append(cases, []string{a})
		for _, b := range pool {
			cases = append(cases, []string{a, b})
		}
	}

	for _, actual := range cases {
		for _, exp := range cases {
			expectedText := strings.Join(exp, "\n")
			expectedLines := strings.Split(expectedText, "\n")

			n := max(len(actual), len(expectedLines))
			allMatch := true
			for i := 0; i < n; i++ {
				if Normalize(lineAt(actual, i)) != Normalize(lineAt(expectedLines, i)) {
					allMatch = false
				}
			}

			got := Diff(actual, expectedText)
			if (len(got) == 0) != allMatch {
				t.Errorf("Diff(%q, %q) = %v, allMatch = %v", actual, expectedText, got, allMatch)
			}
		}
	}
}

func TestContains(t *testing.T) {
	actual := []string{
		"VLAN Name                             Status    Ports",
		"---- -------------------------------- --------- -------",
		"10   sales                            active    Gi0/1",
	}

	tests := []struct {
		name     string
		expected string
		want     bool
	}{
		{"empty expected", "", true},
		{"blank expected", " \n ", true},
		{"single line fragment", "10 sales active", true},
		{"spans lines", "-------\n10   sales", true},
		{"absent", "20 eng", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(actual, tt.expected); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.expected, got, tt.want)
			}
		})
	}

	if Contains(nil, "x") {
		t.Error("Contains(nil, \"x\") = true")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"one", []string{"one"}},
		{"one\ntwo", []string{"one", "two"}},
		{"one\r\ntwo\r\n", []string{"one", "two", ""}},
	}

	for _, tt := range tests {
		if got := SplitLines(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
