package withdrawal

import (
	"strings"

	"github.com/amirasaad/payminute/pkg/domain"
	"github.com/amirasaad/payminute/pkg/domain/kyc"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PixKeyType identifies how a pix key is addressed.
type PixKeyType string

const (
	PixKeyCPF    PixKeyType = "cpf"
	PixKeyCNPJ   PixKeyType = "cnpj"
	PixKeyEmail  PixKeyType = "email"
	PixKeyPhone  PixKeyType = "phone"
	PixKeyRandom PixKeyType = "random"
)

var validate = validator.New()

// NormalizePixKey validates key for its type and returns the canonical form:
// digits for documents, lower case for e-mails, E.164 for phones.
func NormalizePixKey(kind PixKeyType, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", domain.ErrInvalidPixKey
	}
	switch kind {
	case PixKeyCPF:
		if kyc.ValidCPF(key) {
			return kyc.NormalizeDigits(key), nil
		}
	case PixKeyCNPJ:
		if kyc.ValidCNPJ(key) {
			return kyc.NormalizeDigits(key), nil
		}
	case PixKeyEmail:
		key = strings.ToLower(key)
		if validate.Var(key, "email,max=77") == nil {
			return key, nil
		}
	case PixKeyPhone:
		digits := kyc.NormalizeDigits(key)
		switch {
		case len(digits) == 10 || len(digits) == 11:
			digits = "55" + digits
		case (len(digits) == 12 || len(digits) == 13) && strings.HasPrefix(digits, "55"):
		default:
			return "", domain.ErrInvalidPixKey
		}
		if phone := "+" + digits; validate.Var(phone, "e164") == nil {
			return phone, nil
		}
	case PixKeyRandom:
		if id, err := uuid.Parse(key); err == nil {
			return id.String(), nil
		}
	}
	return "", domain.ErrInvalidPixKey
}
