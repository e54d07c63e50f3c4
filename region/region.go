package region

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// REGION LOOKUP — Closed enumeration of registration regions
// ============================================================================
// Codes 1–32 are the only valid values of the registration-region column.
// Names are the join keys for population tables and boundary features.
// ============================================================================

// ErrUnknownRegion is returned for any code outside the enumeration.
var ErrUnknownRegion = errors.New("unknown region code")

// Count is the size of the enumeration.
const Count = 32

// StateOfMexico is the code whose name differs between data sources.
const StateOfMexico = 15

var names = [Count]string{
	"Aguascalientes",
	"Baja California",
	"Baja California Sur",
	"Campeche",
	"Coahuila",
	"Colima",
	"Chiapas",
	"Chihuahua",
	"Ciudad de México",
	"Durango",
	"Guanajuato",
	"Guerrero",
	"Hidalgo",
	"Jalisco",
	"Estado de México",
	"Michoacán",
	"Morelos",
	"Nayarit",
	"Nuevo León",
	"Oaxaca",
	"Puebla",
	"Querétaro",
	"Quintana Roo",
	"San Luis Potosí",
	"Sinaloa",
	"Sonora",
	"Tabasco",
	"Tamaulipas",
	"Tlaxcala",
	"Veracruz",
	"Yucatán",
	"Zacatecas",
}

// overrides maps alternate spellings found in population tables to the
// canonical name used by the boundary collection.
var overrides = map[string]string{
	"México": names[StateOfMexico-1],
}

// Name returns the display name for a region code.
func Name(code int) (string, error) {
	if code < 1 || code > Count {
		return "", fmt.Errorf("%w: %d", ErrUnknownRegion, code)
	}
	return names[code-1], nil
}

// NameOf parses a code as it appears in a record dimension ("9", " 09 ").
func NameOf(key string) (string, error) {
	code, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownRegion, key)
	}
	return Name(code)
}

// Valid reports whether code belongs to the enumeration.
func Valid(code int) bool {
	return code >= 1 && code <= Count
}

// Normalize applies the explicit name overrides. Unlisted names pass through.
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := overrides[name]; ok {
		return canonical
	}
	return name
}

// Codes returns all codes in ascending order.
func Codes() []int {
	codes := make([]int, Count)
	for i := range codes {
		codes[i] = i + 1
	}
	return codes
}

// Keys returns all codes as dimension keys, in ascending order.
func Keys() []string {
	keys := make([]string, Count)
	for i := range keys {
		keys[i] = strconv.Itoa(i + 1)
	}
	return keys
}

// Names returns all display names ordered by code.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}
