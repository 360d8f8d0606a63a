package validators

import "testing"

func TestNormalizeCPF(t *testing.T) {
	cases := map[string]string{
		"529.982.247-25": "52998224725",
		"52998224725":    "52998224725",
		" 529 982 247 ":  "529982247",
		"":               "",
	}
	for in, want := range cases {
		if got := NormalizeCPF(in); got != want {
			t.Errorf("NormalizeCPF(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIsValidCPF(t *testing.T) {
	valid := []string{
		"529.982.247-25",
		"52998224725",
		"111.444.777-35",
	}
	for _, cpf := range valid {
		if !IsValidCPF(cpf) {
			t.Errorf("IsValidCPF(%q) = false, want true", cpf)
		}
	}

	invalid := []string{
		"529.982.247-26", // wrong second check digit
		"529.982.247-15", // wrong first check digit
		"111.111.111-11", // repeated digits
		"00000000000",
		"1234567890",   // too short
		"123456789012", // too long
		"",
		"abc.def.ghi-jk",
	}
	for _, cpf := range invalid {
		if IsValidCPF(cpf) {
			t.Errorf("IsValidCPF(%q) = true, want false", cpf)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  User@Example.COM ": "user@example.com",
		"user@example.com":    "user@example.com",
	}
	for in, want := range cases {
		if got := NormalizeEmail(in); got != want {
			t.Errorf("NormalizeEmail(%q) = %q, want %q", in, got, want)
		}
	}
}
