package refet

import (
	"fmt"
	"math"
	"time"
)

// Astro holds the astronomic quantities of one day at one latitude.
type Astro struct {
	DayLength      float64 // astronomical day length, hours
	PhotoDayLength float64 // day length with the sun above -4 degrees, hours
	SinLD          float64
	CosLD          float64
	DSinB          float64 // daily integral of sine of solar height, s
	DSinBE         float64 // same, corrected for lower transmissivity at low solar height, s
	Angot          float64 // extraterrestrial radiation, J/m2/day
	AtmTr          float64 // atmospheric transmission
	DiffusePP      float64 // diffuse irradiation perpendicular to the direction of light, J/m2/s
}

// ComputeAstro returns day length and radiation geometry for day at latitude lat,
// using irrad (J/m2/day) to derive atmospheric transmission.
func ComputeAstro(day time.Time, lat, irrad float64) (Astro, error) {
	if math.Abs(lat) > 90 {
		return Astro{}, fmt.Errorf("latitude %g outside [-90, 90]", lat)
	}

	const angle = -4.0
	rad := math.Pi / 180
	doy := float64(day.YearDay())

	dec := -math.Asin(math.Sin(23.45*rad) * math.Cos(2*math.Pi*(doy+10)/365))
	sc := 1370 * (1 + 0.033*math.Cos(2*math.Pi*doy/365))

	sinld := math.Sin(rad*lat) * math.Sin(dec)
	cosld := math.Cos(rad*lat) * math.Cos(dec)
	aob := sinld / cosld

	var a Astro
	a.SinLD, a.CosLD = sinld, cosld

	// Polar day and night clamp day length instead of failing in Asin.
	if math.Abs(aob) <= 1 {
		a.DayLength = 12 * (1 + 2*math.Asin(aob)/math.Pi)
		root := math.Sqrt(1 - aob*aob)
		a.DSinB = 3600 * (a.DayLength*sinld + 24*cosld*root/math.Pi)
		a.DSinBE = 3600 * (a.DayLength*(sinld+0.4*(sinld*sinld+cosld*cosld*0.5)) +
			12*cosld*(2+3*0.4*sinld)*root/math.Pi)
	} else {
		if aob > 1 {
			a.DayLength = 24
		}
		a.DSinB = 3600 * a.DayLength * sinld
		a.DSinBE = 3600 * a.DayLength * (sinld + 0.4*(sinld*sinld+cosld*cosld*0.5))
	}

	aobCorr := (-math.Sin(angle*rad) + sinld) / cosld
	switch {
	case math.Abs(aobCorr) <= 1:
		a.PhotoDayLength = 12 * (1 + 2*math.Asin(aobCorr)/math.Pi)
	case aobCorr > 1:
		a.PhotoDayLength = 24
	}

	a.Angot = sc * a.DSinB
	if a.DayLength > 0 && a.Angot > 0 {
		a.AtmTr = irrad / a.Angot
	}

	var frdif float64
	switch {
	case a.AtmTr > 0.75:
		frdif = 0.23
	case a.AtmTr > 0.35:
		frdif = 1.33 - 1.46*a.AtmTr
	case a.AtmTr > 0.07:
		frdif = 1 - 2.3*(a.AtmTr-0.07)*(a.AtmTr-0.07)
	default:
		frdif = 1
	}
	a.DiffusePP = frdif * a.AtmTr * 0.5 * sc

	return a, nil
}
