/*
Copyright © 2019 the fluxprint authors.
This file is part of fluxprint.

fluxprint is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

fluxprint is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with fluxprint.  If not, see <http://www.gnu.org/licenses/>.
*/

package fluxprint

import (
	"fmt"
	"math"
	"time"

	"github.com/ctessum/atmos/acm2"
)

// UsageKey selects how the stability of a record is determined.
type UsageKey int

const (
	// UseSensibleHeat derives the Obukhov length from the sensible heat
	// flux, air density and friction velocity.
	UseSensibleHeat UsageKey = 0

	// UseObukhov uses the friction velocity and Obukhov length as given.
	UseObukhov UsageKey = 1
)

// TurbulenceRecord holds the turbulence statistics for one averaging
// period. Missing values are NaN.
type TurbulenceRecord struct {
	Time time.Time

	WindDir   float64 // direction the wind blows from [degrees clockwise from north]
	WindSpeed float64 // [m/s]
	SigmaV    float64 // standard deviation of the lateral wind [m/s]
	UStar     float64 // friction velocity [m/s]
	L         float64 // Obukhov length [m]
	H         float64 // sensible heat flux [W/m²]
	Rho       float64 // air density [kg/m³]

	Key UsageKey
}

// Validate checks that r can be run through the footprint model.
func (r *TurbulenceRecord) Validate() error {
	vars := []float64{r.WindDir, r.WindSpeed, r.SigmaV, r.UStar}
	varNames := []string{"wind direction", "wind speed", "sigma_v", "u*"}
	switch r.Key {
	case UseObukhov:
		vars = append(vars, r.L)
		varNames = append(varNames, "Obukhov length")
	case UseSensibleHeat:
		vars = append(vars, r.H, r.Rho)
		varNames = append(varNames, "sensible heat flux", "air density")
	default:
		return r.invalid("unknown usage key %d", r.Key)
	}
	for i, v := range vars {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return r.invalid("%s is missing", varNames[i])
		}
	}
	switch {
	case !(r.UStar > 0):
		return r.invalid("u*=%g but should be >0", r.UStar)
	case r.WindDir < 0 || r.WindDir > 360:
		return r.invalid("wind direction %g is outside [0, 360]", r.WindDir)
	case r.WindSpeed < 0:
		return r.invalid("wind speed %g is negative", r.WindSpeed)
	case r.SigmaV < 0:
		return r.invalid("sigma_v %g is negative", r.SigmaV)
	case r.Key == UseObukhov && r.L == 0:
		return r.invalid("Obukhov length is exactly zero")
	case r.Key == UseSensibleHeat && !(r.Rho > 0):
		return r.invalid("air density %g should be >0", r.Rho)
	}
	return nil
}

func (r *TurbulenceRecord) invalid(format string, args ...interface{}) error {
	return &ValidationError{Time: r.Time, Reason: fmt.Sprintf(format, args...)}
}

// ObukhovLength returns the Obukhov length [m] to use for r, negative
// for unstable stratification. Under UseSensibleHeat it is calculated
// from the sensible heat flux at the reference temperature [K]. Zero
// heat flux gives an infinite length (neutral stratification).
func (r *TurbulenceRecord) ObukhovLength(referenceTemperature float64) float64 {
	if r.Key == UseObukhov {
		return r.L
	}
	// acm2 returns the length with the sign of the kinematic heat flux;
	// an upward (positive) flux is unstable.
	return -acm2.ObukhovLen(r.H, r.Rho, referenceTemperature, r.UStar)
}
