package util

import (
	"errors"
	"net/mail"
	"strings"
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("email inválido")
	}
	return nil
}

// ValidatePassword verifica requisitos mínimos de senha.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// ValidateCPF confere os dígitos verificadores do CPF.
func ValidateCPF(cpf string) error {
	digits := onlyDigits(cpf)
	if len(digits) != 11 {
		return errors.New("CPF inválido")
	}
	if allSame(digits) {
		return errors.New("CPF inválido")
	}
	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(digits[i]-'0') * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != int(digits[pos]-'0') {
			return errors.New("CPF inválido")
		}
	}
	return nil
}

// ValidateCNPJ confere os dígitos verificadores do CNPJ.
func ValidateCNPJ(cnpj string) error {
	digits := onlyDigits(cnpj)
	if len(digits) != 14 {
		return errors.New("CNPJ inválido")
	}
	if allSame(digits) {
		return errors.New("CNPJ inválido")
	}
	weights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	for _, pos := range []int{12, 13} {
		sum := 0
		offset := len(weights) - pos
		for i := 0; i < pos; i++ {
			sum += int(digits[i]-'0') * weights[offset+i]
		}
		check := sum % 11
		if check < 2 {
			check = 0
		} else {
			check = 11 - check
		}
		if check != int(digits[pos]-'0') {
			return errors.New("CNPJ inválido")
		}
	}
	return nil
}

// OnlyDigits remove tudo que não for dígito (máscaras de CPF/CNPJ/telefone).
func OnlyDigits(value string) string {
	return onlyDigits(value)
}

func onlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
