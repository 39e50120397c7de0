package kyc

import "strings"

// NormalizeDigits strips everything that is not an ASCII digit.
func NormalizeDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidCPF checks the two mod-11 check digits of a CPF. Punctuation is
// ignored; numbers made of a single repeated digit are rejected.
func ValidCPF(cpf string) bool {
	d := NormalizeDigits(cpf)
	if len(d) != 11 || allSame(d) {
		return false
	}
	return checkDigit(d[:9], 10) == int(d[9]-'0') &&
		checkDigit(d[:10], 11) == int(d[10]-'0')
}

// ValidCNPJ checks the two mod-11 check digits of a CNPJ.
func ValidCNPJ(cnpj string) bool {
	d := NormalizeDigits(cnpj)
	if len(d) != 14 || allSame(d) {
		return false
	}
	first := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	second := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	return weighted(d[:12], first) == int(d[12]-'0') &&
		weighted(d[:13], second) == int(d[13]-'0')
}

func checkDigit(digits string, startWeight int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * (startWeight - i)
	}
	return mod11(sum)
}

func weighted(digits string, weights []int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * weights[i]
	}
	return mod11(sum)
}

func mod11(sum int) int {
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}
