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

// Package similarity provides Monin-Obukhov similarity relationships for
// the atmospheric surface layer, expressed as functions of the
// dimensionless stability parameter ζ = z/L. The forms follow
// Businger-Dyer as used in Kormann and Meixner (2001).
package similarity

import "math"

// Karman is the von Kármán constant [-].
const Karman = 0.4

// PhiM is the dimensionless wind shear (momentum stability function).
func PhiM(ζ float64) float64 {
	if ζ > 0 { // Stable conditions
		return 1 + 5*ζ
	}
	return math.Pow(1-16*ζ, -0.25)
}

// PhiC is the dimensionless gradient of a scalar such as heat or a
// trace gas.
func PhiC(ζ float64) float64 {
	if ζ > 0 { // Stable conditions
		return 1 + 5*ζ
	}
	return math.Pow(1-16*ζ, -0.5)
}

// Xi returns (1-16ζ)^¼. It is only defined for ζ <= 0 and returns NaN
// otherwise.
func Xi(ζ float64) float64 {
	if ζ > 0 {
		return math.NaN()
	}
	return math.Pow(1-16*ζ, 0.25)
}

// PsiM is the integrated stability correction to the logarithmic
// wind profile.
func PsiM(ζ float64) float64 {
	if ζ > 0 { // Stable conditions
		return -5 * ζ
	}
	x := Xi(ζ)
	return 2*math.Log((1+x)/2) + math.Log((1+x*x)/2) - 2*math.Atan(x) + math.Pi/2
}
