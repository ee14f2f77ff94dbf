package render

import (
	"image/color"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"black":       {A: 0xff},
	"white":       {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"red":         {R: 0xff, A: 0xff},
	"green":       {G: 0x80, A: 0xff},
	"blue":        {B: 0xff, A: 0xff},
	"yellow":      {R: 0xff, G: 0xff, A: 0xff},
	"transparent": {},
}

// ParseColor accepts #RGB, #RGBA, #RRGGBB, #RRGGBBAA and a few CSS names.
// Anything else yields opaque black, the canvas default.
func ParseColor(s string) color.NRGBA {
	s = strings.TrimSpace(s)
	if c, ok := namedColors[strings.ToLower(s)]; ok {
		return c
	}
	hex := strings.TrimPrefix(s, "#")
	var v [4]uint8
	v[3] = 0xff
	switch len(hex) {
	case 3, 4:
		for i := 0; i < len(hex); i++ {
			d, ok := hexDigit(hex[i])
			if !ok {
				return color.NRGBA{A: 0xff}
			}
			v[i] = d * 17
		}
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			hi, ok1 := hexDigit(hex[i])
			lo, ok2 := hexDigit(hex[i+1])
			if !ok1 || !ok2 {
				return color.NRGBA{A: 0xff}
			}
			v[i/2] = hi<<4 | lo
		}
	default:
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: v[0], G: v[1], B: v[2], A: v[3]}
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// HexColor formats c as #rrggbbaa.
func HexColor(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{n.R, n.G, n.B, n.A} {
		b[1+2*i] = digits[v>>4]
		b[2+2*i] = digits[v&0x0f]
	}
	return string(b)
}
