package phone

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"international with plus", "+8801712345678", "01712345678"},
		{"country code without zero", "881712345678", "01712345678"},
		{"ten digits", "1712345678", "01712345678"},
		{"already national", "01712345678", "01712345678"},
		{"formatted", "017-1234 5678", "01712345678"},
		{"too short", "123", ""},
		{"empty", "", ""},
		{"long unknown kept as digits", "123456789012", "123456789012"},
		{"eleven digits without zero kept", "11712345678", "11712345678"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.raw); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"+8801712345678",
		"881712345678",
		"1712345678",
		"01911-000000",
		"123456789012",
		"0088 01712 345678",
	}

	for _, raw := range inputs {
		once := Normalize(raw)
		if once == "" {
			continue
		}
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestIsValidMobile(t *testing.T) {
	if !IsValidMobile("+8801712345678") {
		t.Error("expected grameenphone number to be valid")
	}
	if IsValidMobile("123") {
		t.Error("expected short number to be invalid")
	}
	if IsValidMobile("02123456789") {
		t.Error("expected dhaka landline to be rejected as mobile")
	}
}
