package strutil

import "testing"

func TestTruncateUTF8(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"shorter_than_max", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"ascii_cut", "hello", 3, "hel"},
		{"multibyte_not_split", "héllo", 2, "h"},
		{"zero", "hello", 0, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TruncateUTF8(tc.in, tc.max)
			if got != tc.want {
				t.Fatalf("TruncateUTF8(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
			}
		})
	}
}

func TestContainsNormalized(t *testing.T) {
	if !ContainsNormalized("  Alice@X.COM ", "alice@x.com") {
		t.Fatal("expected case-insensitive containment")
	}
	if ContainsNormalized("anything", "") {
		t.Fatal("empty needle must not match")
	}
}
