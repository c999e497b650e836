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
	"math"
	"time"
)

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b, tolerance float64) bool {
	if math.Abs(a-b) > tolerance {
		return true
	}
	return false
}

// testSite returns a 400 m × 400 m site with 2 m cells and the sensor
// in the centre.
func testSite() *SiteConfig {
	return &SiteConfig{
		MeasurementHeight:    2,
		RoughnessHeight:      0.1,
		XMax:                 200,
		YMax:                 200,
		Dx:                   2,
		SensorX:              200,
		SensorY:              200,
		ReferenceTemperature: DefaultReferenceTemperature,
	}
}

// testRecord returns a moderately unstable record with wind from the
// north.
func testRecord(t time.Time) TurbulenceRecord {
	return TurbulenceRecord{
		Time:      t,
		WindDir:   0,
		WindSpeed: 2.5,
		SigmaV:    0.6,
		UStar:     0.3,
		L:         -50,
		H:         math.NaN(),
		Rho:       math.NaN(),
		Key:       UseObukhov,
	}
}

var testTime = time.Date(2018, 5, 1, 10, 30, 0, 0, time.UTC)
