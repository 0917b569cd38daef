package profile

import "math"

// cutoutSegments is the number of unwrap divisions used for nozzle
// intersection curves.
const cutoutSegments = 36

// safeDiv divides a by b, returning def when the divisor is near zero.
func safeDiv(a, b, def float64) float64 {
	if math.Abs(b) < 1e-12 {
		return def
	}
	return a / b
}

// meanDiameter converts an outer diameter to the mid-wall diameter.
func meanDiameter(outer, thickness float64) float64 {
	return outer - thickness
}

// unwrappedWidth is the flat-pattern width of a cylindrical part, measured
// at the mid-wall diameter.
func unwrappedWidth(outer, thickness float64) float64 {
	return math.Pi * meanDiameter(outer, thickness)
}

// coneHalfAngle is the half-angle of a truncated cone in radians. Equal
// diameters yield exactly zero.
func coneHalfAngle(diaBase, diaTop, height float64) float64 {
	if diaBase == diaTop {
		return 0
	}
	return math.Atan2((diaBase-diaTop)/2, height)
}

// coneApexHeight extends a truncated cone of height h to its apex. Returns
// zero for the degenerate cylindrical case.
func coneApexHeight(diaBase, diaTop, height float64) float64 {
	if diaBase == diaTop {
		return 0
	}
	return height * diaBase / (diaBase - diaTop)
}

// dishRise is the crown rise of a torispherical head above the knuckle
// tangency plane: R1 - sqrt(R1^2 - (b-r)^2) with R1 = R - r and
// b = D/2 - s. The second result is false when the radii cannot close the
// given diameter.
func dishRise(crown, knuckle, halfInner float64) (float64, bool) {
	r1 := crown - knuckle
	a := halfInner - knuckle
	if r1 <= 0 || a < 0 || a > r1 {
		return 0, false
	}
	return r1 - math.Sqrt(r1*r1-a*a), true
}

// generatrixCurve computes the unwrapped intersection curve of a branch of
// mid-wall radius r against a parent of diameter parentDia, offset from the
// parent axis. length is measured from the parent axis, so every generatrix
// is length minus the parent surface height at that unwrap angle. Each point
// is (unwrap position, generatrix length). The second result is false when
// the branch does not lie fully on the parent or fails to reach past its
// surface.
func generatrixCurve(parentDia, r, offset, length float64) ([]CutPoint, bool) {
	half := parentDia / 2
	if r+math.Abs(offset) > half || length <= half {
		return nil, false
	}
	width := 2 * math.Pi * r
	pts := make([]CutPoint, 0, cutoutSegments+1)
	for i := 0; i <= cutoutSegments; i++ {
		w := 2*math.Pi - float64(i)*(2*math.Pi/cutoutSegments)
		s := math.Sin(w)*r + offset
		g := length - math.Sqrt(half*half-s*s)
		pts = append(pts, CutPoint{
			X: float64(i) * width / cutoutSegments,
			Y: g,
		})
	}
	return pts, true
}

// diameterAt returns the local diameter of a cone at axial position z
// measured from the base edge.
func diameterAt(diaBase, diaTop, height, z float64) float64 {
	t := safeDiv(z, height, 0)
	return diaBase + (diaTop-diaBase)*t
}
