package aspect

import (
	"net/netip"
	"strconv"
	"strings"
	"unicode"
)

// MaskType selects how a field tagged aspect.mask is obscured in Printer
// output.
type MaskType string

// Mask types.
const (
	MaskFull  MaskType = "full"  // secret -> ******
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskCard  MaskType = "card"  // 4111111111111111 -> ************1111
	MaskPhone MaskType = "phone" // 555-123-4567 -> ***-***-4567
	MaskIP    MaskType = "ip"    // 192.168.1.100 -> 192.168.x.x
	MaskUUID  MaskType = "uuid"  // 550e8400-e29b-... -> 550e8400-****
	MaskName  MaskType = "name"  // John Smith -> J*** S****
)

// Masker obscures a printable value.
type Masker interface {
	Mask(value string) string
}

// MaskerFunc adapts a function to Masker.
type MaskerFunc func(string) string

// Mask implements Masker.
func (f MaskerFunc) Mask(value string) string { return f(value) }

func stars(n int) string {
	return strings.Repeat("*", n)
}

func maskFull(value string) string {
	return stars(len([]rune(value)))
}

func maskEmail(value string) string {
	at := strings.LastIndexByte(value, '@')
	if at < 1 {
		return maskFull(value)
	}
	r := []rune(value[:at])
	return string(r[0]) + "***" + value[at:]
}

// maskTail keeps the last four digits and stars the other digits in place,
// preserving separators.
func maskTail(value string) string {
	digits := 0
	for _, r := range value {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 4 {
		return maskFull(value)
	}
	var b strings.Builder
	seen := 0
	for _, r := range value {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		seen++
		if seen > digits-4 {
			b.WriteRune(r)
		} else {
			b.WriteByte('*')
		}
	}
	return b.String()
}

func maskIP(value string) string {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return maskFull(value)
	}
	if addr.Is4() {
		b := addr.As4()
		return strconv.Itoa(int(b[0])) + "." + strconv.Itoa(int(b[1])) + ".x.x"
	}
	prefix, err := addr.Prefix(64)
	if err != nil {
		return maskFull(value)
	}
	return prefix.String()
}

func maskUUID(value string) string {
	head, _, ok := strings.Cut(value, "-")
	if !ok || len(value) != 36 {
		return maskFull(value)
	}
	return head + "-****-****-****-************"
}

func maskName(value string) string {
	words := strings.Fields(value)
	for i, w := range words {
		r := []rune(w)
		words[i] = string(r[0]) + stars(len(r)-1)
	}
	return strings.Join(words, " ")
}

// builtinMaskers returns the default masker registry.
func builtinMaskers() map[MaskType]Masker {
	return map[MaskType]Masker{
		MaskFull:  MaskerFunc(maskFull),
		MaskEmail: MaskerFunc(maskEmail),
		MaskCard:  MaskerFunc(maskTail),
		MaskPhone: MaskerFunc(maskTail),
		MaskIP:    MaskerFunc(maskIP),
		MaskUUID:  MaskerFunc(maskUUID),
		MaskName:  MaskerFunc(maskName),
	}
}
