package earth

import (
	"time"

	"github.com/echoflaresat/globeview/vectors"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunDirection returns the unit vector from the globe center toward the Sun
// at time t, expressed in the globe's Y-up frame (see ToPoint3D).
func SunDirection(t time.Time) vectors.Vec3 {
	t = t.UTC()
	jd := julian.TimeToJD(t)

	// Apparent RA/Dec of the Sun (in radians)
	ra, dec := solar.ApparentEquatorial(jd)

	// Unit vector in ECI (Earth-centered inertial)
	x := dec.Cos() * ra.Cos()
	y := dec.Cos() * ra.Sin()
	z := dec.Sin()

	// Rotate ECI → ECEF using GMST
	gmst := sidereal.Apparent(jd)
	cosGMST := gmst.Angle().Cos()
	sinGMST := gmst.Angle().Sin()

	xe := x*cosGMST + y*sinGMST
	ye := -x*sinGMST + y*cosGMST
	ze := z

	return FromECEF(vectors.Vec3{X: xe, Y: ye, Z: ze}).Normalize()
}

// FromECEF maps an ECEF vector (X toward 0°E, Z toward the north pole) into
// the globe frame, where ToPoint3D(lat, lon, 1) equals
// (cos lat cos lon, sin lat, -cos lat sin lon).
func FromECEF(v vectors.Vec3) vectors.Vec3 {
	return vectors.Vec3{X: v.X, Y: v.Z, Z: -v.Y}
}
