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
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// netCDFVariable is the variable holding the averaged footprints.
const netCDFVariable = "footprint"

// WriteNetCDF writes the grids in averages to netCDF file w as one
// variable with dimensions [group, y, x]. The group keys, in sorted
// order, are stored as the comma-separated global attribute "groups",
// so they may not contain commas. All grids must have the same shape.
func WriteNetCDF(w *os.File, averages Averages) error {
	keys := averages.Keys()
	if len(keys) == 0 {
		return fmt.Errorf("fluxprint: no group averages to write")
	}
	s := averages[keys[0]].Grid.Shape()
	data := sparse.ZerosDense(len(keys), s.Ny, s.Nx)
	n := s.Nx * s.Ny
	for i, k := range keys {
		if strings.Contains(k, ",") {
			return fmt.Errorf("fluxprint: group name %q cannot be stored in netCDF because it contains a comma", k)
		}
		g := averages[k].Grid
		if !g.Shape().Equal(s) {
			return &ShapeMismatchError{Member: k, Want: s, Got: g.Shape()}
		}
		copy(data.Elements[i*n:(i+1)*n], g.Data.Elements)
	}

	h := cdf.NewHeader([]string{"group", "y", "x"}, []int{len(keys), s.Ny, s.Nx})
	h.AddAttribute("", "comment", "fluxprint group-averaged flux footprints")
	h.AddAttribute("", "groups", strings.Join(keys, ","))
	h.AddAttribute("", "x_max", []float64{s.XMax})
	h.AddAttribute("", "y_max", []float64{s.YMax})
	h.AddAttribute("", "version", Version)
	h.AddVariable(netCDFVariable, []string{"group", "y", "x"}, []float32{0})
	h.AddAttribute(netCDFVariable, "description", "Footprint weight per unit area")
	h.AddAttribute(netCDFVariable, "units", "1/m2")
	h.Define()
	if errs := h.Check(); len(errs) > 0 {
		return fmt.Errorf("fluxprint: invalid netCDF header: %v", errs[0])
	}

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return err
	}
	if err = writeNCF(f, netCDFVariable, data); err != nil {
		return fmt.Errorf("fluxprint: writing variable %s to netcdf file: %v", netCDFVariable, err)
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, Var string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(Var)
	start := make([]int, len(end))
	w := f.Writer(Var, start, end)
	_, err := w.Write(data32)
	return err
}

// ReadNetCDF reads the group averages written by WriteNetCDF. The
// returned grids are keyed by group.
func ReadNetCDF(rw cdf.ReaderWriterAt) (map[string]*Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("fluxprint.ReadNetCDF: %v", err)
	}
	groups, ok := f.Header.GetAttribute("", "groups").(string)
	if !ok {
		return nil, fmt.Errorf("fluxprint.ReadNetCDF: missing groups attribute")
	}
	xmax, ok1 := f.Header.GetAttribute("", "x_max").([]float64)
	ymax, ok2 := f.Header.GetAttribute("", "y_max").([]float64)
	if !ok1 || !ok2 || len(xmax) != 1 || len(ymax) != 1 {
		return nil, fmt.Errorf("fluxprint.ReadNetCDF: missing grid extent attributes")
	}
	dims := f.Header.Lengths(netCDFVariable)
	if len(dims) != 3 {
		return nil, fmt.Errorf("fluxprint.ReadNetCDF: variable %s has %d dimensions, not 3", netCDFVariable, len(dims))
	}
	keys := strings.Split(groups, ",")
	if len(keys) != dims[0] {
		return nil, fmt.Errorf("fluxprint.ReadNetCDF: %d group names for %d groups", len(keys), dims[0])
	}
	tmp := make([]float32, dims[0]*dims[1]*dims[2])
	r := f.Reader(netCDFVariable, nil, nil)
	if _, err = r.Read(tmp); err != nil {
		return nil, fmt.Errorf("fluxprint.ReadNetCDF: %v", err)
	}
	s := Shape{Nx: dims[2], Ny: dims[1], XMax: xmax[0], YMax: ymax[0]}
	n := s.Nx * s.Ny
	o := make(map[string]*Grid, len(keys))
	for i, k := range keys {
		g := NewGrid(s)
		for j, v := range tmp[i*n : (i+1)*n] {
			g.Data.Elements[j] = float64(v)
		}
		g.UpdateMax()
		o[k] = g
	}
	return o, nil
}
