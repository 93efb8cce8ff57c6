package services

import (
	"strings"
	"unicode"
)

type Contact struct {
	Email string
	Phone string
	Chat  string
}

func (c Contact) Empty() bool {
	return c.Email == "" && c.Phone == "" && c.Chat == ""
}

// SanitizeContact normalises buyer contact fields the same way at checkout and
// at recovery so they compare equal.
func SanitizeContact(email, phone, chat string) (Contact, error) {
	c := Contact{
		Email: strings.ToLower(strings.TrimSpace(email)),
		Phone: sanitizePhone(phone),
		Chat:  strings.TrimPrefix(strings.TrimSpace(chat), "@"),
	}
	if c.Email != "" && !validEmail(c.Email) {
		return Contact{}, ErrInvalidEmail
	}
	return c, nil
}

func sanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		if unicode.IsDigit(r) || (i == 0 && r == '+') {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	return out
}

func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t<>") && strings.Contains(email[at+1:], ".")
}
