package validators

import "strings"

// NormalizeCPF strips everything that is not a digit.
func NormalizeCPF(cpf string) string {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidCPF validates the two check digits of a Brazilian CPF.
// The input may contain formatting characters.
func IsValidCPF(cpf string) bool {
	cpf = NormalizeCPF(cpf)

	if len(cpf) != 11 {
		return false
	}

	// All-equal digits pass the checksum but are not valid documents.
	if strings.Count(cpf, string(cpf[0])) == 11 {
		return false
	}

	if int(cpf[9]-'0') != checkDigit(cpf[:9], 10) {
		return false
	}
	return int(cpf[10]-'0') == checkDigit(cpf[:10], 11)
}

func checkDigit(digits string, startWeight int) int {
	total := 0
	for i, r := range digits {
		total += int(r-'0') * (startWeight - i)
	}
	remainder := total % 11
	if remainder < 2 {
		return 0
	}
	return 11 - remainder
}
