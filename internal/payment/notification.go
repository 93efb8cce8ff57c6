// Package payment turns loosely shaped payment-app notifications into a
// detected amount.
package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	// KindUnknown carries neither a numeric amount field nor a recognisable
	// currency string.
	KindUnknown Kind = iota
	// KindAmount came with a numeric amount field.
	KindAmount
	// KindText came with free text containing a currency amount.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindAmount:
		return "amount"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Notification is one inbound payment event. Amount is only meaningful when
// Kind is KindAmount or KindText.
type Notification struct {
	Kind   Kind
	Field  string
	Amount int64
	Text   string
	Raw    map[string]any
}

func (n Notification) DetectedAmount() (int64, bool) {
	if n.Kind == KindUnknown || n.Amount <= 0 {
		return 0, false
	}
	return n.Amount, true
}

var amountFields = []string{"amountDetected", "amount_detected", "amount", "nominal", "total"}

var textFields = []string{"text", "message", "body", "content", "notification", "title"}

var currencyPattern = regexp.MustCompile(`(?i)\b(?:rp|idr)\.?\s*([0-9][0-9.,]*)`)

// ParseNotification decodes a JSON object. An error is returned only when the
// body is not a JSON object; a body without any usable amount yields
// KindUnknown.
func ParseNotification(body []byte) (Notification, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return Notification{}, fmt.Errorf("decode notification: %w", err)
	}
	if raw == nil {
		return Notification{}, fmt.Errorf("decode notification: body is not an object")
	}

	n := Notification{Kind: KindUnknown, Raw: raw}

	for _, field := range amountFields {
		v, ok := raw[field]
		if !ok {
			continue
		}
		if amount, ok := numericAmount(v); ok {
			n.Kind = KindAmount
			n.Field = field
			n.Amount = amount
			return n, nil
		}
	}

	for _, field := range textFields {
		s, ok := raw[field].(string)
		if !ok || s == "" {
			continue
		}
		if amount, ok := AmountFromText(s); ok {
			n.Kind = KindText
			n.Field = field
			n.Amount = amount
			n.Text = s
			return n, nil
		}
	}

	return n, nil
}

func numericAmount(v any) (int64, bool) {
	switch val := v.(type) {
	case json.Number:
		return decimalAmount(val.String())
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, false
		}
		if amount, ok := decimalAmount(s); ok {
			return amount, true
		}
		return AmountFromText(s)
	default:
		return 0, false
	}
}

func decimalAmount(s string) (int64, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	return d.IntPart(), true
}

// AmountFromText finds the first "Rp"/"IDR" amount in s. Thousands separators
// ("." or ",") are stripped; a trailing two-digit fraction is dropped.
func AmountFromText(s string) (int64, bool) {
	m := currencyPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	num := strings.TrimRight(m[1], ".,")
	if num == "" {
		return 0, false
	}

	if i := strings.LastIndexAny(num, ".,"); i >= 0 && len(num)-i-1 == 2 {
		num = num[:i]
	}
	num = strings.NewReplacer(".", "", ",", "").Replace(num)

	return decimalAmount(num)
}
