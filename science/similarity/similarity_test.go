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

package similarity

import (
	"math"
	"testing"
)

func absDifferent(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance {
		return true
	}
	return false
}

func TestPhiMUnstable(t *testing.T) {
	prev := PhiM(0)
	if prev != 1 {
		t.Errorf("PhiM(0) = %g; want 1", prev)
	}
	for ζ := -0.01; ζ >= -10; ζ -= 0.01 {
		v := PhiM(ζ)
		if !(v > 0) || v > 1 {
			t.Errorf("PhiM(%g) = %g; want in (0, 1]", ζ, v)
		}
		if v > prev {
			t.Errorf("PhiM(%g) = %g increased from %g", ζ, v, prev)
		}
		prev = v
	}
}

func TestPhiMStable(t *testing.T) {
	for _, ζ := range []float64{1e-6, 0.1, 0.5, 1, 4} {
		if v := PhiM(ζ); v != 1+5*ζ {
			t.Errorf("PhiM(%g) = %g; want %g", ζ, v, 1+5*ζ)
		}
	}
}

func TestPhiC(t *testing.T) {
	tests := []struct {
		ζ, want float64
	}{
		{ζ: 0, want: 1},
		{ζ: 0.2, want: 2},
		{ζ: -3, want: 1. / 7},
	}
	for _, test := range tests {
		if v := PhiC(test.ζ); absDifferent(v, test.want, 1.e-12) {
			t.Errorf("PhiC(%g) = %g; want %g", test.ζ, v, test.want)
		}
	}
}

func TestXi(t *testing.T) {
	if v := Xi(-5); absDifferent(v, math.Pow(81, 0.25), 1.e-12) {
		t.Errorf("Xi(-5) = %g; want 3", v)
	}
	if v := Xi(0.1); !math.IsNaN(v) {
		t.Errorf("Xi(0.1) = %g; want NaN", v)
	}
}

func TestPsiM(t *testing.T) {
	if v := PsiM(0); absDifferent(v, 0, 1.e-9) {
		t.Errorf("PsiM(0) = %g; want 0", v)
	}
	if v := PsiM(0.3); v != -1.5 {
		t.Errorf("PsiM(0.3) = %g; want -1.5", v)
	}
	// The correction increases the wind profile under unstable conditions.
	for _, ζ := range []float64{-0.01, -0.1, -1, -10} {
		if v := PsiM(ζ); !(v > 0) || math.IsInf(v, 0) {
			t.Errorf("PsiM(%g) = %g; want finite and > 0", ζ, v)
		}
	}
}
