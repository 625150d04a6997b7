package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. All layout widths are twips (1/1440 inch).

// Unit represents the original unit of a length value as written in settings.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitTwip             // twips
)

// Conversion constants.
const (
	TwipsPerInch = 1440.0
	TwipsPerPt   = 20.0
	TwipsPerCM   = TwipsPerInch / 2.54
	TwipsPerMM   = TwipsPerCM / 10
	MmPerTwip    = 1.0 / TwipsPerMM
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitTwip:
		return "twip"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Twips converts the length to twips. Unit-less values are taken as centimeters,
// which is how stored document margins are expressed.
func (l Length) Twips() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * TwipsPerMM
	case UnitIN:
		return l.Value * TwipsPerInch
	case UnitPT:
		return l.Value * TwipsPerPt
	case UnitTwip:
		return l.Value
	case UnitCM, UnitNone:
		return l.Value * TwipsPerCM
	}
	return l.Value
}

// CMToTwip converts centimeters to twips.
func CMToTwip(cm float64) float64 { return cm * TwipsPerCM }

// TwipToMM converts twips to millimeters.
func TwipToMM(tw float64) float64 { return tw * MmPerTwip }

// MMToTwip converts millimeters to twips.
func MMToTwip(mm float64) float64 { return mm * TwipsPerMM }

// ParseLength parses a length string such as "2.5cm", "18mm", "720twip" or "3".
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{Unit: UnitNone}, nil
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"twip", UnitTwip}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{Unit: UnitNone}, err
	}
	return Length{Value: f, Unit: unit}, nil
}
