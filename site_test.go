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
	"strings"
	"testing"
)

func TestLoadSiteConfig(t *testing.T) {
	const cfg = `
MeasurementHeight = 2.5
RoughnessHeight = 0.05
XMax = 100.0
YMax = 50.0
Dx = 1.0
`
	c, err := LoadSiteConfig(strings.NewReader(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if c.SensorX != 100 || c.SensorY != 50 {
		t.Errorf("sensor = (%g, %g); want the grid centre (100, 50)", c.SensorX, c.SensorY)
	}
	if c.ReferenceTemperature != DefaultReferenceTemperature {
		t.Errorf("reference temperature = %g", c.ReferenceTemperature)
	}
	want := Shape{Nx: 200, Ny: 100, XMax: 200, YMax: 100}
	if s := c.Shape(); !s.Equal(want) {
		t.Errorf("shape = %v; want %v", s, want)
	}
}

func TestSiteConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *SiteConfig)
	}{
		{name: "height below roughness", modify: func(c *SiteConfig) { c.MeasurementHeight = 0.05 }},
		{name: "zero roughness", modify: func(c *SiteConfig) { c.RoughnessHeight = 0 }},
		{name: "zero cell size", modify: func(c *SiteConfig) { c.Dx = 0 }},
		{name: "partial cells", modify: func(c *SiteConfig) { c.Dx = 3 }},
		{name: "sensor outside", modify: func(c *SiteConfig) { c.SensorX = 500 }},
		{name: "sensor south of grid", modify: func(c *SiteConfig) { c.SensorY = -0.5 }},
		{name: "sensor unset", modify: func(c *SiteConfig) { c.SensorX = math.NaN() }},
	}
	if err := testSite().Validate(); err != nil {
		t.Fatal(err)
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := testSite()
			test.modify(c)
			if err := c.Validate(); err == nil {
				t.Error("invalid configuration passed validation")
			}
		})
	}
}

func TestSiteConfigSensorOnEdge(t *testing.T) {
	c := testSite()
	b := c.Bounds()
	if b.Min.X != 0 || b.Min.Y != 0 || b.Max.X != 2*c.XMax || b.Max.Y != 2*c.YMax {
		t.Fatalf("bounds = %+v", *b)
	}
	for _, p := range [][2]float64{{0, 0}, {b.Max.X, b.Max.Y}, {0, c.YMax}} {
		c.SensorX, c.SensorY = p[0], p[1]
		if err := c.Validate(); err != nil {
			t.Errorf("sensor at (%g, %g): %v", p[0], p[1], err)
		}
	}
}
