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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// rasterTag is the mandatory first line of a raster file.
const rasterTag = "DSAA"

// LegacyHeader is the fixed raster header written by older grouping
// tools regardless of the real grid dimensions. It mislabels any grid
// that is not 150×150 cells over 0.75×0.75 and is only written when
// explicitly requested.
const LegacyHeader = "DSAA\n150 150\n0 0.7500001\n0 0.7500001\n0 1.000000\n"

// legacyShape is the shape LegacyHeader declares.
var legacyShape = Shape{Nx: 150, Ny: 150, XMax: 0.7500001, YMax: 0.7500001}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// rasterHeader returns the raster header describing g.
func rasterHeader(g *Grid) string {
	return fmt.Sprintf("%s\n%d %d\n0 %s\n0 %s\n0 %s\n", rasterTag, g.Nx(), g.Ny(),
		formatFloat(g.XMax), formatFloat(g.YMax), formatFloat(g.FMax))
}

// WriteRaster writes g to w in ASCII raster format: a five line header
// followed by Ny lines of Nx space-separated values, southern row first.
func WriteRaster(w io.Writer, g *Grid) error {
	return writeRaster(w, g, rasterHeader(g))
}

func writeRaster(w io.Writer, g *Grid, header string) error {
	b := bufio.NewWriter(w)
	if _, err := b.WriteString(header); err != nil {
		return err
	}
	nx := g.Nx()
	buf := make([]byte, 0, 32)
	for k, v := range g.Data.Elements {
		if k%nx != 0 {
			b.WriteByte(' ')
		}
		buf = strconv.AppendFloat(buf[:0], v, 'g', -1, 64)
		b.Write(buf)
		if k%nx == nx-1 {
			b.WriteByte('\n')
		}
	}
	return b.Flush()
}

// WriteRasterFile writes g to the file at path. If legacy is true the
// fixed LegacyHeader is written instead of one describing g.
func WriteRasterFile(path string, g *Grid, legacy bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fluxprint: creating raster file: %v", err)
	}
	header := rasterHeader(g)
	if legacy {
		header = LegacyHeader
	}
	if err = writeRaster(f, g, header); err != nil {
		f.Close()
		return fmt.Errorf("fluxprint: writing raster file %s: %v", path, err)
	}
	return f.Close()
}

// MaxRasterCells is the largest number of cells ReadRaster will
// allocate for a single grid.
const MaxRasterCells = 1 << 26

// ReadRaster reads a grid in ASCII raster format from r. name is used
// in error messages. Values may be split across lines in any way, but
// there must be exactly Nx·Ny of them.
func ReadRaster(r io.Reader, name string) (*Grid, error) {
	br := bufio.NewReader(r)
	var header [5]string
	for i := range header {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, &FormatError{File: name, Line: i + 1, Reason: "unexpected end of header"}
			}
			return nil, err
		}
		header[i] = strings.TrimSpace(line)
	}
	if header[0] != rasterTag {
		return nil, &FormatError{File: name, Line: 1, Reason: fmt.Sprintf("header tag is %q, not %q", header[0], rasterTag)}
	}

	var s Shape
	if n, err := fmt.Sscanf(header[1], "%d %d", &s.Nx, &s.Ny); err != nil || n != 2 || s.Nx < 1 || s.Ny < 1 ||
		len(strings.Fields(header[1])) != 2 {
		return nil, &FormatError{File: name, Line: 2, Reason: fmt.Sprintf("invalid grid dimensions %q", header[1])}
	}
	if s.Nx > MaxRasterCells/s.Ny {
		return nil, &FormatError{File: name, Line: 2,
			Reason: fmt.Sprintf("grid dimensions %d×%d exceed the limit of %d cells", s.Nx, s.Ny, MaxRasterCells)}
	}
	ranges := make([]float64, 3)
	for i := range ranges {
		lo, hi, err := parseRange(header[i+2])
		if err != nil {
			return nil, &FormatError{File: name, Line: i + 3, Reason: err.Error()}
		}
		if lo != 0 {
			return nil, &FormatError{File: name, Line: i + 3, Reason: fmt.Sprintf("lower bound is %g but must be 0", lo)}
		}
		ranges[i] = hi
	}
	s.XMax, s.YMax = ranges[0], ranges[1]

	g := NewGrid(s)
	g.FMax = ranges[2]
	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	n := 0
	for sc.Scan() {
		if n == len(g.Data.Elements) {
			return nil, &FormatError{File: name, Reason: fmt.Sprintf("more than the %d values declared by the header", n)}
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, &FormatError{File: name, Reason: fmt.Sprintf("value %d: %v", n+1, err)}
		}
		g.Data.Elements[n] = v
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if n != len(g.Data.Elements) {
		return nil, &FormatError{File: name, Reason: fmt.Sprintf("found %d values but the header declares %d×%d", n, s.Nx, s.Ny)}
	}
	if err := g.check(); err != nil {
		return nil, &FormatError{File: name, Reason: err.Error()}
	}
	return g, nil
}

// ReadRasterFile reads the raster file at path.
func ReadRasterFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fluxprint: opening raster file: %v", err)
	}
	defer f.Close()
	return ReadRaster(f, path)
}

func parseRange(line string) (lo, hi float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("range %q should have two values", line)
	}
	if lo, err = strconv.ParseFloat(fields[0], 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %v", line, err)
	}
	if hi, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, 0, fmt.Errorf("range %q: %v", line, err)
	}
	return lo, hi, nil
}
