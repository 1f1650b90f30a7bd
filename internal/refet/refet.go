// Package refet derives reference evapotranspiration from daily weather.
//
// Potential evaporation from a free water surface (E0), a wet bare soil (ES0)
// and a reference crop canopy (ET0) follow Penman (1948) as used in WOFOST.
// With [ModelPenmanMonteith] ET0 is replaced by the FAO-56 Penman-Monteith
// estimate for a short grass reference. All results are in mm/day.
package refet

import (
	"fmt"
	"math"
	"time"
)

// Model selects the ET0 formula.
type Model string

const (
	ModelPenmanMonteith Model = "PM"
	ModelPenman         Model = "P"
)

// ParseModel validates a model name.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case ModelPenmanMonteith, ModelPenman:
		return Model(s), nil
	default:
		return "", fmt.Errorf("unknown ET model %q, want PM or P", s)
	}
}

// Input is one day of weather at a site, in canonical units.
type Input struct {
	Day       time.Time
	Latitude  float64 // degrees
	Elevation float64 // m
	TMin      float64 // C
	TMax      float64 // C
	Irrad     float64 // J/m2/day
	Vap       float64 // hPa
	Wind      float64 // m/s at 2 m
	AngstromA float64
	AngstromB float64
}

// Result holds reference evapotranspiration in mm/day.
type Result struct {
	E0  float64
	ES0 float64
	ET0 float64
}

// Reference computes E0, ES0 and ET0 for one day.
func Reference(in Input, model Model) (Result, error) {
	if _, err := ParseModel(string(model)); err != nil {
		return Result{}, err
	}
	r, err := penman(in)
	if err != nil {
		return Result{}, err
	}
	if model == ModelPenmanMonteith {
		et0, err := penmanMonteith(in)
		if err != nil {
			return Result{}, err
		}
		r.ET0 = et0
	}
	return r, nil
}

// penman computes E0, ES0 and ET0 with the Penman (1948) formula.
func penman(in Input) (Result, error) {
	const (
		psycon = 0.67     // psychrometric instrument constant, mbar/C
		refcfw = 0.05     // albedo of water surface
		refcfs = 0.15     // albedo of soil surface
		refcfc = 0.25     // albedo of canopy
		lhvap  = 2.45e6   // latent heat of evaporation, J/kg
		stbc   = 4.899e-3 // Stefan-Boltzmann, J/m2/d/K4
	)

	tmpa := (in.TMin + in.TMax) / 2
	tdif := in.TMax - in.TMin
	bu := 0.54 + 0.35*limit(0, 1, (tdif-12)/4)

	pbar := 1013 * math.Exp(-0.034*in.Elevation/(tmpa+273))
	gamma := psycon * pbar / 1013

	svap := 6.10588 * math.Exp(17.32491*tmpa/(tmpa+238.102))
	delta := 238.102 * 17.32491 * svap / math.Pow(tmpa+238.102, 2)
	vap := math.Min(in.Vap, svap)

	astro, err := ComputeAstro(in.Day, in.Latitude, in.Irrad)
	if err != nil {
		return Result{}, err
	}
	// Relative sunshine duration from the Angstrom formula.
	relssd := limit(0, 1, (astro.AtmTr-math.Abs(in.AngstromA))/math.Abs(in.AngstromB))

	rb := stbc * math.Pow(tmpa+273, 4) * (0.56 - 0.079*math.Sqrt(vap)) * (0.1 + 0.9*relssd)

	rnw := (in.Irrad*(1-refcfw) - rb) / lhvap
	rns := (in.Irrad*(1-refcfs) - rb) / lhvap
	rnc := (in.Irrad*(1-refcfc) - rb) / lhvap

	ea := 0.26 * math.Max(0, svap-vap) * (0.5 + bu*in.Wind)
	eac := 0.26 * math.Max(0, svap-vap) * (1 + bu*in.Wind)

	return Result{
		E0:  math.Max(0, (delta*rnw+gamma*ea)/(delta+gamma)),
		ES0: math.Max(0, (delta*rns+gamma*ea)/(delta+gamma)),
		ET0: math.Max(0, (delta*rnc+gamma*eac)/(delta+gamma)),
	}, nil
}

// penmanMonteith computes ET0 for a short grass reference following FAO-56.
func penmanMonteith(in Input) (float64, error) {
	const (
		psycon = 0.665    // kPa/C
		refcfc = 0.23     // reference canopy albedo
		cres   = 70.0     // surface resistance, s/m
		lhvap  = 2.45e6   // J/kg
		stbc   = 4.903e-3 // J/m2/d/K4
		soilG  = 0.0      // soil heat flux, J/m2/day
	)

	tmpa := (in.TMin + in.TMax) / 2
	vap := in.Vap / 10 // hPa to kPa

	p := 101.3 * math.Pow((293-0.0065*in.Elevation)/293, 5.26)
	gamma := psycon * p * 1e-3

	svapTmpa := satVapourPressure(tmpa)
	delta := 4098 * svapTmpa / math.Pow(tmpa+237.3, 2)

	svap := (satVapourPressure(in.TMax) + satVapourPressure(in.TMin)) / 2
	vap = math.Min(vap, svap)

	stbTmax := stbc * math.Pow(in.TMax+273.16, 4)
	stbTmin := stbc * math.Pow(in.TMin+273.16, 4)
	rnlTmp := (stbTmax + stbTmin) / 2 * (0.34 - 0.14*math.Sqrt(vap))

	astro, err := ComputeAstro(in.Day, in.Latitude, in.Irrad)
	if err != nil {
		return 0, err
	}
	clearSky := (0.75 + 2e-5*in.Elevation) * astro.Angot
	if clearSky <= 0 {
		return 0, nil
	}

	rnl := rnlTmp * (1.35*(in.Irrad/clearSky) - 0.35)
	rn := ((1-refcfc)*in.Irrad - rnl) / lhvap
	ea := (900 / (tmpa + 273)) * in.Wind * (svap - vap)
	mgamma := gamma * (1 + cres/208*in.Wind)

	et0 := delta*(rn-soilG)/(delta+mgamma) + gamma*ea/(delta+mgamma)
	return math.Max(0, et0), nil
}

// satVapourPressure returns saturated vapour pressure in kPa at temp (C).
func satVapourPressure(temp float64) float64 {
	return 0.6108 * math.Exp(17.27*temp/(237.3+temp))
}

func limit(lo, hi, v float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
