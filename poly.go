package curves

import "github.com/chewxy/math32"

const (
	// equalPositionEpsilon is the relative tolerance under which neighboring
	// evaluated points are treated as coincident when computing tangents.
	equalPositionEpsilon = 1e-6

	// zUpEpsilon is the threshold below which a tangent is considered parallel
	// to the Z axis.
	zUpEpsilon = 1e-4
)

var (
	zAxis = Vec3{0, 0, 1}
	xAxis = Vec3{1, 0, 0}
)

// directionBisect returns the unit direction halfway between the incoming
// and outgoing directions at middle. ok is false when all three points
// coincide and no direction exists.
func directionBisect(prev, middle, next Vec3) (dir Vec3, ok bool) {
	prevEqual := prev.almostEqualRelative(middle, equalPositionEpsilon)
	nextEqual := middle.almostEqualRelative(next, equalPositionEpsilon)
	switch {
	case prevEqual && nextEqual:
		return Vec3{}, false
	case prevEqual:
		return next.Sub(middle).Normalize(), true
	case nextEqual:
		return middle.Sub(prev).Normalize(), true
	}
	dirPrev := middle.Sub(prev).Normalize()
	dirNext := next.Sub(middle).Normalize()
	return dirPrev.Add(dirNext).Normalize(), true
}

// calculateTangents writes the tangent of every point of a polyline.
// Points without a defined direction copy the closest preceding valid
// tangent (or the first valid one); a curve without any direction points
// along +Z.
func calculateTangents(positions []Vec3, cyclic bool, tangents []Vec3) {
	n := len(positions)
	switch n {
	case 0:
		return
	case 1:
		tangents[0] = zAxis
		return
	}

	usedFallback := false
	bisect := func(prev, middle, next Vec3) Vec3 {
		dir, ok := directionBisect(prev, middle, next)
		if !ok {
			usedFallback = true
		}
		return dir
	}
	for i := 1; i < n-1; i++ {
		tangents[i] = bisect(positions[i-1], positions[i], positions[i+1])
	}
	if cyclic {
		tangents[0] = bisect(positions[n-1], positions[0], positions[1])
		tangents[n-1] = bisect(positions[n-2], positions[n-1], positions[0])
	} else {
		if positions[0].almostEqualRelative(positions[1], equalPositionEpsilon) {
			tangents[0] = Vec3{}
			usedFallback = true
		} else {
			tangents[0] = positions[1].Sub(positions[0]).Normalize()
		}
		if positions[n-1].almostEqualRelative(positions[n-2], equalPositionEpsilon) {
			tangents[n-1] = Vec3{}
			usedFallback = true
		} else {
			tangents[n-1] = positions[n-1].Sub(positions[n-2]).Normalize()
		}
	}
	if !usedFallback {
		return
	}

	firstValid := -1
	for i, t := range tangents {
		if !t.IsZero() {
			firstValid = i
			break
		}
	}
	if firstValid == -1 {
		for i := range tangents {
			tangents[i] = zAxis
		}
		return
	}
	for i := range firstValid {
		tangents[i] = tangents[firstValid]
	}
	for i := firstValid + 1; i < n; i++ {
		if tangents[i].IsZero() {
			tangents[i] = tangents[i-1]
		}
	}
}

// firstNormal returns a normal perpendicular to tangent and to the Z axis,
// or +X for tangents along Z.
func firstNormal(tangent Vec3) Vec3 {
	if math32.Abs(tangent[0])+math32.Abs(tangent[1]) < zUpEpsilon {
		return xAxis
	}
	return Vec3{tangent[1], -tangent[0], 0}.Normalize()
}

// nextNormal transports a normal from one tangent to the next with the
// smallest rotation.
func nextNormal(lastNormal, lastTangent, tangent Vec3) Vec3 {
	if lastTangent.IsZero() || tangent.IsZero() {
		return lastNormal
	}
	angle := angleNormalized(lastTangent, tangent)
	if angle == 0 {
		return lastNormal
	}
	axis := lastTangent.Cross(tangent).Normalize()
	if axis.IsZero() {
		return lastNormal
	}
	return lastNormal.RotateAround(axis, angle)
}

// calculateNormalsMinimumTwist transports the first normal along the curve.
// For cyclic curves the twist between the transported and the first normal is
// spread evenly over all points so the normals meet up again.
func calculateNormalsMinimumTwist(tangents []Vec3, cyclic bool, normals []Vec3) {
	n := len(normals)
	if n == 0 {
		return
	}
	normals[0] = firstNormal(tangents[0])
	for i := 1; i < n; i++ {
		normals[i] = nextNormal(normals[i-1], tangents[i-1], tangents[i])
	}
	if !cyclic {
		return
	}

	uncorrected := nextNormal(normals[n-1], tangents[n-1], tangents[0])
	correction := angleSignedOnAxis(uncorrected, normals[0], tangents[0])
	if correction > math32.Pi {
		correction -= 2 * math32.Pi
	}
	step := correction / float32(n)
	for i := range normals {
		normals[i] = normals[i].RotateAround(tangents[i], step*float32(i))
	}
}

// calculateNormalsZUp writes normals perpendicular to both the tangent and
// the Z axis.
func calculateNormalsZUp(tangents []Vec3, normals []Vec3) {
	for i, t := range tangents {
		normals[i] = firstNormal(t)
	}
}

// applyTilt rotates every normal around its tangent by the tilt angle.
func applyTilt(tangents []Vec3, tilts []float32, normals []Vec3) {
	for i, tilt := range tilts {
		if tilt != 0 {
			normals[i] = normals[i].RotateAround(tangents[i], tilt)
		}
	}
}
