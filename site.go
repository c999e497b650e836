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
	"io"
	"math"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
)

// DefaultReferenceTemperature is the air temperature [K] used to derive
// the Obukhov length from sensible heat flux when none is configured.
const DefaultReferenceTemperature = 293.15

// SiteConfig holds the static geometry of a measurement site.
type SiteConfig struct {
	// MeasurementHeight is the sensor height above the zero-plane [m].
	MeasurementHeight float64

	// RoughnessHeight is the aerodynamic roughness length [m].
	RoughnessHeight float64

	// XMax and YMax are the grid half-extents [m]. The grid covers
	// [0, 2·XMax] × [0, 2·YMax].
	XMax, YMax float64

	// Dx is the grid cell edge length [m].
	Dx float64

	// SensorX and SensorY are the sensor location within the grid [m].
	SensorX, SensorY float64

	// ReferenceTemperature is the air temperature [K] used when a
	// record asks for its Obukhov length to be derived from the
	// sensible heat flux.
	ReferenceTemperature float64
}

// LoadSiteConfig decodes a TOML site description from r. The sensor
// defaults to the centre of the grid and ReferenceTemperature defaults
// to DefaultReferenceTemperature. The result is validated.
func LoadSiteConfig(r io.Reader) (*SiteConfig, error) {
	c := &SiteConfig{
		SensorX:              math.NaN(),
		SensorY:              math.NaN(),
		ReferenceTemperature: DefaultReferenceTemperature,
	}
	if _, err := toml.DecodeReader(r, c); err != nil {
		return nil, fmt.Errorf("fluxprint: decoding site configuration: %v", err)
	}
	if math.IsNaN(c.SensorX) {
		c.SensorX = c.XMax
	}
	if math.IsNaN(c.SensorY) {
		c.SensorY = c.YMax
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Nx returns the number of grid columns.
func (c *SiteConfig) Nx() int { return int(math.Round(2 * c.XMax / c.Dx)) }

// Ny returns the number of grid rows.
func (c *SiteConfig) Ny() int { return int(math.Round(2 * c.YMax / c.Dx)) }

// Bounds returns the extent of the footprint grid.
func (c *SiteConfig) Bounds() *geom.Bounds {
	b := geom.NewBoundsPoint(geom.Point{X: 0, Y: 0})
	b.Extend(geom.NewBoundsPoint(geom.Point{X: 2 * c.XMax, Y: 2 * c.YMax}))
	return b
}

// Sensor returns the sensor location.
func (c *SiteConfig) Sensor() geom.Point {
	return geom.Point{X: c.SensorX, Y: c.SensorY}
}

// Shape returns the shape of grids created for this site.
func (c *SiteConfig) Shape() Shape {
	b := c.Bounds()
	return Shape{Nx: c.Nx(), Ny: c.Ny(), XMax: b.Max.X - b.Min.X, YMax: b.Max.Y - b.Min.Y}
}

// Validate checks that c describes a usable site.
func (c *SiteConfig) Validate() error {
	vars := []float64{c.RoughnessHeight, c.XMax, c.YMax, c.Dx, c.ReferenceTemperature}
	varNames := []string{"RoughnessHeight", "XMax", "YMax", "Dx", "ReferenceTemperature"}
	for i, v := range vars {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("fluxprint: site configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	if !(c.MeasurementHeight > c.RoughnessHeight) {
		return fmt.Errorf("fluxprint: site configuration: MeasurementHeight=%g must exceed RoughnessHeight=%g",
			c.MeasurementHeight, c.RoughnessHeight)
	}
	for i, half := range []float64{c.XMax, c.YMax} {
		cells := 2 * half / c.Dx
		if math.Abs(cells-math.Round(cells)) > 1.e-6*cells || math.Round(cells) < 1 {
			return fmt.Errorf("fluxprint: site configuration: 2·%s=%g is not a whole number of %g m cells",
				[]string{"XMax", "YMax"}[i], 2*half, c.Dx)
		}
	}
	// The sensor's bounds have no extent, so overlapping the grid means
	// lying inside it or on its edge.
	b, s := c.Bounds(), c.Sensor()
	if !b.Overlaps(s.Bounds()) {
		return fmt.Errorf("fluxprint: site configuration: sensor location (%g, %g) is outside the grid [%g, %g]×[%g, %g]",
			s.X, s.Y, b.Min.X, b.Max.X, b.Min.Y, b.Max.Y)
	}
	return nil
}
