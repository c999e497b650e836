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

	"github.com/ctessum/sparse"
	"github.com/gonum/floats"
)

// Shape holds the metadata that must agree between grids before they
// can be combined.
type Shape struct {
	Nx, Ny     int
	XMax, YMax float64 // extents [m]
}

func (s Shape) String() string {
	return fmt.Sprintf("%dx%d over %gx%g", s.Nx, s.Ny, s.XMax, s.YMax)
}

// Equal reports whether s and o describe the same grid layout.
func (s Shape) Equal(o Shape) bool {
	const tol = 1.e-9
	return s.Nx == o.Nx && s.Ny == o.Ny &&
		math.Abs(s.XMax-o.XMax) <= tol*math.Max(1, math.Abs(s.XMax)) &&
		math.Abs(s.YMax-o.YMax) <= tol*math.Max(1, math.Abs(s.YMax))
}

// Grid is a dense two-dimensional field of footprint weights [m⁻²].
// Data has shape [Ny, Nx]; row 0 is the southern edge of the grid.
type Grid struct {
	Data *sparse.DenseArray

	// XMax and YMax are the grid extents [m]; the grid covers
	// [0, XMax] × [0, YMax].
	XMax, YMax float64

	// FMax is the maximum weight in the grid as declared in its raster
	// header.
	FMax float64
}

// NewGrid returns an all-zero grid.
func NewGrid(s Shape) *Grid {
	return &Grid{
		Data: sparse.ZerosDense(s.Ny, s.Nx),
		XMax: s.XMax,
		YMax: s.YMax,
	}
}

// Nx returns the number of columns.
func (g *Grid) Nx() int { return g.Data.Shape[1] }

// Ny returns the number of rows.
func (g *Grid) Ny() int { return g.Data.Shape[0] }

// Shape returns the layout of g.
func (g *Grid) Shape() Shape {
	return Shape{Nx: g.Nx(), Ny: g.Ny(), XMax: g.XMax, YMax: g.YMax}
}

// Get returns the weight in column i, row j.
func (g *Grid) Get(i, j int) float64 { return g.Data.Get(j, i) }

// Set sets the weight in column i, row j.
func (g *Grid) Set(v float64, i, j int) { g.Data.Set(v, j, i) }

// CellArea returns the area of one grid cell [m²].
func (g *Grid) CellArea() float64 {
	return g.XMax / float64(g.Nx()) * g.YMax / float64(g.Ny())
}

// Integral returns the area integral of the weights, which approaches 1
// for a footprint that is well contained in the grid.
func (g *Grid) Integral() float64 {
	return floats.Sum(g.Data.Elements) * g.CellArea()
}

// UpdateMax sets FMax to the largest weight in the grid.
func (g *Grid) UpdateMax() {
	g.FMax = floats.Max(g.Data.Elements)
}

// Copy returns a deep copy of g.
func (g *Grid) Copy() *Grid {
	o := NewGrid(g.Shape())
	copy(o.Data.Elements, g.Data.Elements)
	o.FMax = g.FMax
	return o
}

// check returns an error if any weight is negative or not finite.
func (g *Grid) check() error {
	for k, v := range g.Data.Elements {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("cell (%d, %d) has weight %g", k%g.Nx(), k/g.Nx(), v)
		}
	}
	return nil
}
