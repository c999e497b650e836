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

	"github.com/gonum/floats"
)

// Accumulate adds g to running cell by cell. The grids must have the
// same shape.
func Accumulate(running, g *Grid) error {
	if !running.Shape().Equal(g.Shape()) {
		return &ShapeMismatchError{Want: running.Shape(), Got: g.Shape()}
	}
	floats.Add(running.Data.Elements, g.Data.Elements)
	return nil
}

// Accumulator keeps a running sum of grids of one shape. The division
// by the number of grids happens once, in Mean. The zero value is ready
// to use; an Accumulator must not be shared between goroutines.
type Accumulator struct {
	sum *Grid
	n   int
}

// Add adds g to the running sum. g itself is not modified.
func (a *Accumulator) Add(g *Grid) error {
	if a.sum == nil {
		a.sum = g.Copy()
		a.n = 1
		return nil
	}
	if err := Accumulate(a.sum, g); err != nil {
		return err
	}
	a.n++
	return nil
}

// Merge adds the partial sum held by b to a.
func (a *Accumulator) Merge(b *Accumulator) error {
	if b.n == 0 {
		return nil
	}
	if a.sum == nil {
		a.sum = b.sum.Copy()
		a.n = b.n
		return nil
	}
	if err := Accumulate(a.sum, b.sum); err != nil {
		return err
	}
	a.n += b.n
	return nil
}

// Count returns the number of grids added so far.
func (a *Accumulator) Count() int { return a.n }

// Shape returns the shape of the accumulated grids and false if no
// grid has been added.
func (a *Accumulator) Shape() (Shape, bool) {
	if a.sum == nil {
		return Shape{}, false
	}
	return a.sum.Shape(), true
}

// Mean returns the arithmetic mean of the added grids with FMax set to
// its largest weight.
func (a *Accumulator) Mean() (*Grid, error) {
	if a.n == 0 {
		return nil, fmt.Errorf("fluxprint: no grids to average")
	}
	g := a.sum.Copy()
	floats.Scale(1/float64(a.n), g.Data.Elements)
	g.UpdateMax()
	return g, nil
}
