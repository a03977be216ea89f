// Package export writes the current point set out as a plain-text table.
package export

import (
	"bytes"
	"math"
	"strconv"

	"pointview/quarkgl"
)

const (
	// FileName is the name every export is saved under.
	FileName = "feature_points.txt"
	// MIMEType is the content type of an export.
	MIMEType = "text/plain"

	header = "Cube Index, X, Y, Z\n"
)

// Format renders points as the export table. Row i is points[i].
func Format(points []quarkgl.Vec3) []byte {
	var b bytes.Buffer
	b.Grow(len(header) + len(points)*32)
	b.WriteString(header)
	for i, p := range points {
		b.WriteString(strconv.Itoa(i))
		for _, v := range [3]float64{p.X, p.Y, p.Z} {
			b.WriteString(", ")
			b.WriteString(Fixed2(v))
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

// Fixed2 formats v with exactly two decimals.
//
// The exact binary value of v is rounded, with halfway cases going away from zero.
// A value that is exactly zero prints without a sign.
func Fixed2(v float64) string {
	if v == 0 {
		return "0.00"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	a := math.Abs(v)
	var s string
	// The only exact ties at two decimals are odd multiples of 1/8, and strconv
	// rounds those to even. Such a value is n/8 with n < 2^53, so its rounded cents
	// ceil(n*12.5) are exact in an int64.
	if e := a * 8; e == math.Trunc(e) && math.Mod(e, 2) == 1 {
		s = formatCents((int64(e)*25 + 1) / 2)
	} else {
		s = strconv.FormatFloat(a, 'f', 2, 64)
	}
	if v < 0 {
		return "-" + s
	}
	return s
}

func formatCents(c int64) string {
	frac := strconv.FormatInt(c%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return strconv.FormatInt(c/100, 10) + "." + frac
}
