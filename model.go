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

	"github.com/spatialmodel/fluxprint/science/similarity"
)

const κ = similarity.Karman

// Parameters are the power-law profile parameters of the Kormann and
// Meixner (2001) footprint model for one stability state.
type Parameters struct {
	L float64 // Obukhov length after the near-surface guard [m]
	U float64 // wind speed at the measurement height [m/s]

	M float64 // exponent of the wind speed power law
	N float64 // exponent of the eddy diffusivity power law

	UConst float64 // constant of the wind speed power law
	KConst float64 // constant of the eddy diffusivity power law

	R  float64 // shape factor r = 2 + m - n
	Mu float64 // μ = (1 + m) / r

	A, B float64 // shape constants of the vertical concentration profile

	// Xi is the flux length scale ξ [m].
	Xi float64

	// The mean plume height is ZBarCoef·x^ZBarExp and the mean plume
	// advection velocity is UBarCoef·x^UBarExp, with x the upwind
	// distance [m].
	ZBarCoef, ZBarExp float64
	UBarCoef, UBarExp float64
}

// NewParameters calculates the footprint parameters for a sensor at
// height zm [m] over a surface with roughness length z0 [m] for friction
// velocity ustar [m/s] and Obukhov length L [m].
func NewParameters(zm, z0, ustar, L float64) (*Parameters, error) {
	if !(ustar > 0) {
		return nil, &ValidationError{Reason: fmt.Sprintf("u*=%g but should be >0", ustar)}
	}
	if L == 0 {
		return nil, &ValidationError{Reason: "Obukhov length is exactly zero"}
	}
	if !(zm > z0) || !(z0 > 0) {
		return nil, fmt.Errorf("fluxprint: measurement height %g must exceed roughness height %g > 0", zm, z0)
	}

	// Very short Obukhov lengths make the power-law fit singular near
	// the surface.
	if math.Abs(L) < z0 {
		L = math.Copysign(z0+0.5, L)
	}

	p := &Parameters{L: L}
	ζm, ζ0 := zm/L, z0/L

	p.U = math.Max(ustar/κ*(math.Log(zm/z0)-similarity.PsiM(ζm)+similarity.PsiM(ζ0)), ustar)
	p.M = ustar / κ * similarity.PhiM(ζm) / p.U
	if L > 0 {
		p.N = 1 / (1 + 5*ζm)
	} else {
		p.N = (1 - 24*ζm) / (1 - 16*ζm)
	}

	p.UConst = p.U / math.Pow(zm, p.M)
	p.KConst = κ * ustar / similarity.PhiC(ζm) * math.Pow(zm, 1-p.N)

	p.R = 2 + p.M - p.N
	if !(p.R > 0) {
		return nil, &DegenerateModelError{Reason: fmt.Sprintf("shape factor r=%g should be >0 (m=%g, n=%g)", p.R, p.M, p.N)}
	}
	p.Mu = (1 + p.M) / p.R

	g1r := math.Gamma(1 / p.R)
	g2r := math.Gamma(2 / p.R)
	p.A = p.R * g2r / (g1r * g1r)
	p.B = g2r / g1r

	r2KU := p.R * p.R * p.KConst / p.UConst
	p.Xi = p.UConst * math.Pow(zm, p.R) / (p.R * p.R * p.KConst)
	p.ZBarCoef = p.B * math.Pow(r2KU, 1/p.R)
	p.ZBarExp = 1 / p.R
	p.UBarCoef = math.Gamma(p.Mu) / g1r * math.Pow(r2KU, p.M/p.R) * p.UConst
	p.UBarExp = p.M / p.R

	for i, v := range []float64{p.U, p.M, p.N, p.UConst, p.KConst, p.Mu, p.A, p.B, p.Xi, p.UBarCoef} {
		if !(v > 0) || math.IsInf(v, 0) {
			name := []string{"u", "m", "n", "U", "K", "mu", "A", "B", "xi", "ubar"}[i]
			return nil, &DegenerateModelError{Reason: fmt.Sprintf("%s=%g is not a positive finite number", name, v)}
		}
	}
	return p, nil
}

// logCrosswindIntegrated returns the natural log of the crosswind-
// integrated footprint [m⁻¹] at upwind distance x > 0 [m]. Working in
// log space keeps the very small and very large factors near the
// sensor from overflowing.
func (p *Parameters) logCrosswindIntegrated(x float64) float64 {
	lgμ, _ := math.Lgamma(p.Mu)
	return p.Mu*math.Log(p.Xi) - (1+p.Mu)*math.Log(x) - p.Xi/x - lgμ
}

// CrosswindIntegrated returns the crosswind-integrated footprint [m⁻¹]
// at upwind distance x [m]. It is zero for x <= 0.
func (p *Parameters) CrosswindIntegrated(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	return math.Exp(p.logCrosswindIntegrated(x))
}

// PlumeVelocity returns the mean advection velocity ū(x) [m/s] of the
// plume at upwind distance x [m].
func (p *Parameters) PlumeVelocity(x float64) float64 {
	return p.UBarCoef * math.Pow(x, p.UBarExp)
}

// PlumeHeight returns the mean plume height z̄(x) [m] at upwind
// distance x [m].
func (p *Parameters) PlumeHeight(x float64) float64 {
	return p.ZBarCoef * math.Pow(x, p.ZBarExp)
}

// CrosswindSigma returns the standard deviation [m] of the Gaussian
// crosswind distribution at upwind distance x [m].
func (p *Parameters) CrosswindSigma(x, sigmaV float64) float64 {
	return sigmaV * x / p.PlumeVelocity(x)
}

// Weight returns the footprint weight [m⁻²] of a cell whose centre is
// x [m] upwind and y [m] crosswind of the sensor. The Gaussian
// crosswind distribution is averaged over the cell width dy [m].
func (p *Parameters) Weight(x, y, dy, sigmaV float64) float64 {
	if !(x > 0) {
		return 0
	}
	frac := crosswindFraction(y, dy/2, p.CrosswindSigma(x, sigmaV))
	if frac <= 0 {
		return 0
	}
	return math.Exp(p.logCrosswindIntegrated(x)) * frac / dy
}

// crosswindFraction returns the share of a centred Gaussian with
// standard deviation σ that falls within [y-h, y+h].
func crosswindFraction(y, h, σ float64) float64 {
	if σ <= 0 {
		switch a := math.Abs(y); {
		case a < h:
			return 1
		case a == h:
			return 0.5
		default:
			return 0
		}
	}
	s := σ * math.Sqrt2
	return 0.5 * (math.Erf((y+h)/s) - math.Erf((y-h)/s))
}

// Grid evaluates the footprint on the grid of site for wind blowing
// from windDir [degrees] with lateral wind standard deviation
// sigmaV [m/s]. Cells downwind of the sensor get zero weight.
func (p *Parameters) Grid(site *SiteConfig, windDir, sigmaV float64) (*Grid, error) {
	g := NewGrid(site.Shape())
	θ := windDir * math.Pi / 180
	// Unit vector pointing upwind; +x is east and +y is north.
	ux, uy := math.Sin(θ), math.Cos(θ)
	s := site.Sensor()
	nx, ny := g.Nx(), g.Ny()
	for j := 0; j < ny; j++ {
		oy := (float64(j)+0.5)*site.Dx - s.Y
		for i := 0; i < nx; i++ {
			ox := (float64(i)+0.5)*site.Dx - s.X
			along := ox*ux + oy*uy
			if along <= 0 {
				continue
			}
			cross := ox*uy - oy*ux
			g.Data.Elements[j*nx+i] = p.Weight(along, cross, site.Dx, sigmaV)
		}
	}
	if err := g.check(); err != nil {
		return nil, &DegenerateModelError{Reason: err.Error()}
	}
	g.UpdateMax()
	if g.FMax == 0 {
		return nil, &DegenerateModelError{Reason: "footprint has no weight inside the grid"}
	}
	return g, nil
}

// Footprint calculates the footprint grid of record r at site.
// Records that fail validation return a *ValidationError and
// non-physical model results return a *DegenerateModelError.
func Footprint(r *TurbulenceRecord, site *SiteConfig) (*Grid, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	L := r.ObukhovLength(site.ReferenceTemperature)
	p, err := NewParameters(site.MeasurementHeight, site.RoughnessHeight, r.UStar, L)
	if err != nil {
		return nil, stampTime(err, r)
	}
	g, err := p.Grid(site, r.WindDir, r.SigmaV)
	if err != nil {
		return nil, stampTime(err, r)
	}
	return g, nil
}

// stampTime attaches the record time to model errors.
func stampTime(err error, r *TurbulenceRecord) error {
	switch e := err.(type) {
	case *ValidationError:
		e.Time = r.Time
	case *DegenerateModelError:
		e.Time = r.Time
	}
	return err
}
