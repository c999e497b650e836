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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// missingValue marks a missing number in met tables.
const missingValue = -9999

// metColumns are the columns of the footprint model input table, in
// the only order that is accepted.
var metColumns = []string{
	"Datetime",
	"wd(deg)",
	"U(m/s)",
	"Sgm_v",
	"u*(m/s)",
	"L(m)",
	"H(J/m2)",
	"rho(kg/m3)",
	"key(1/0==use ustar & Obu_L /use H_sensible heat)",
}

// ReadMetData reads a tab-separated footprint model input table. The
// header must list the columns wind direction, wind speed, sigma_v, u*,
// Obukhov length, sensible heat flux, air density and usage key after
// the timestamp, in that order; tables with any other column order are
// rejected rather than guessed at. Missing values (-9999 or NaN) are
// returned as NaN and are caught later by TurbulenceRecord.Validate.
// Rows that cannot be parsed are left out and reported to sum, as a
// *ValidationError when their timestamp could be read and as a
// *FormatError otherwise. name is used in error messages.
func ReadMetData(r io.Reader, name string, sum *Summary) ([]TurbulenceRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{File: name, Line: 1, Reason: "empty met table"}
	} else if err != nil {
		return nil, csvError(err, name)
	}
	if err := checkMetHeader(header); err != nil {
		return nil, &FormatError{File: name, Line: 1, Reason: err.Error()}
	}

	var recs []TurbulenceRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, csvError(err, name)
		}
		rec, err := parseMetRow(row, name, line)
		if err != nil {
			sum.Reject(err)
			continue
		}
		recs = append(recs, rec)
		sum.Accept()
	}
	return recs, nil
}

func checkMetHeader(header []string) error {
	if len(header) != len(metColumns) {
		return fmt.Errorf("met table has %d columns but %d are required", len(header), len(metColumns))
	}
	for i, want := range metColumns {
		got := strings.TrimSpace(header[i])
		if strings.EqualFold(got, want) {
			continue
		}
		if i == len(metColumns)-1 && strings.HasPrefix(strings.ToLower(got), "key") {
			continue
		}
		return fmt.Errorf("column %d is %q but should be %q", i+1, got, want)
	}
	return nil
}

func parseMetRow(row []string, name string, line int) (TurbulenceRecord, error) {
	var rec TurbulenceRecord
	if len(row) != len(metColumns) {
		return rec, &FormatError{File: name, Line: line,
			Reason: fmt.Sprintf("row has %d fields but %d are required", len(row), len(metColumns))}
	}
	t, err := time.Parse(TimeLayout, strings.TrimSpace(row[0]))
	if err != nil {
		return rec, &FormatError{File: name, Line: line, Reason: fmt.Sprintf("timestamp: %v", err)}
	}
	rec.Time = t
	vals := make([]float64, 7)
	for i := range vals {
		if vals[i], err = parseValue(row[i+1]); err != nil {
			return rec, &ValidationError{Time: t,
				Reason: fmt.Sprintf("%s:%d: column %s: %v", name, line, metColumns[i+1], err)}
		}
	}
	rec.WindDir, rec.WindSpeed, rec.SigmaV, rec.UStar = vals[0], vals[1], vals[2], vals[3]
	rec.L, rec.H, rec.Rho = vals[4], vals[5], vals[6]
	key, err := strconv.Atoi(strings.TrimSpace(row[8]))
	if err != nil {
		return rec, &ValidationError{Time: t, Reason: fmt.Sprintf("%s:%d: usage key: %v", name, line, err)}
	}
	rec.Key = UsageKey(key)
	return rec, nil
}

// parseValue parses a number, mapping the missing-value marker to NaN.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v == missingValue {
		return math.NaN(), nil
	}
	return v, nil
}

func csvError(err error, name string) error {
	if pe, ok := err.(*csv.ParseError); ok {
		return &FormatError{File: name, Line: pe.Line, Reason: pe.Err.Error()}
	}
	return fmt.Errorf("fluxprint: reading %s: %v", name, err)
}

// WriteMetData writes recs as a tab-separated footprint model input
// table that ReadMetData can read. Missing values are written as -9999.
func WriteMetData(w io.Writer, recs []TurbulenceRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'
	if err := cw.Write(metColumns); err != nil {
		return err
	}
	row := make([]string, len(metColumns))
	for _, r := range recs {
		row[0] = r.Time.Format(TimeLayout)
		for i, v := range []float64{r.WindDir, r.WindSpeed, r.SigmaV, r.UStar, r.L, r.H, r.Rho} {
			if math.IsNaN(v) {
				row[i+1] = strconv.Itoa(missingValue)
			} else {
				row[i+1] = strconv.FormatFloat(v, 'f', 3, 64)
			}
		}
		row[8] = strconv.Itoa(int(r.Key))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// eddyProColumns are the columns used from a turbulence processor
// "essentials" output file.
var eddyProColumns = []string{"date", "time", "wind_dir", "wind_speed", "u*", "L", "H", "rho_air", "var(v)"}

// ReadEddyPro reads the comma-separated "essentials" output of the
// EddyPro turbulence processor and converts it to turbulence records
// that use the friction velocity and Obukhov length directly. Columns
// are located by name. Rows with missing or malformed values are left
// out and reported to sum in the same way as ReadMetData does.
func ReadEddyPro(r io.Reader, name string, sum *Summary) ([]TurbulenceRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err == io.EOF {
		return nil, &FormatError{File: name, Line: 1, Reason: "empty turbulence statistics file"}
	} else if err != nil {
		return nil, csvError(err, name)
	}
	col := make(map[string]int, len(eddyProColumns))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	idx := make([]int, len(eddyProColumns))
	for i, c := range eddyProColumns {
		j, ok := col[c]
		if !ok {
			return nil, &FormatError{File: name, Line: 1, Reason: fmt.Sprintf("missing column %q", c)}
		}
		idx[i] = j
	}

	var recs []TurbulenceRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, csvError(err, name)
		}
		if len(row) != len(header) {
			sum.Reject(&FormatError{File: name, Line: line,
				Reason: fmt.Sprintf("row has %d fields but the header has %d", len(row), len(header))})
			continue
		}
		t, err := time.Parse("2006-01-02 15:04", strings.TrimSpace(row[idx[0]])+" "+strings.TrimSpace(row[idx[1]]))
		if err != nil {
			sum.Reject(&FormatError{File: name, Line: line, Reason: fmt.Sprintf("timestamp: %v", err)})
			continue
		}
		vals := make([]float64, 7)
		missing, bad := "", error(nil)
		for i := range vals {
			v, err := parseValue(row[idx[i+2]])
			if err != nil {
				bad = &ValidationError{Time: t,
					Reason: fmt.Sprintf("%s:%d: column %s: %v", name, line, eddyProColumns[i+2], err)}
				break
			}
			if math.IsNaN(v) && missing == "" {
				missing = eddyProColumns[i+2]
			}
			vals[i] = v
		}
		if bad != nil {
			sum.Reject(bad)
			continue
		}
		if missing != "" {
			sum.Reject(&ValidationError{Time: t, Reason: missing + " is missing"})
			continue
		}
		if vals[6] < 0 {
			sum.Reject(&ValidationError{Time: t, Reason: fmt.Sprintf("var(v)=%g is negative", vals[6])})
			continue
		}
		recs = append(recs, TurbulenceRecord{
			Time:      t,
			WindDir:   vals[0],
			WindSpeed: vals[1],
			SigmaV:    math.Sqrt(vals[6]),
			UStar:     vals[2],
			L:         vals[3],
			H:         vals[4],
			Rho:       vals[5],
			Key:       UseObukhov,
		})
		sum.Accept()
	}
	return recs, nil
}
