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
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

const testMetTable = "Datetime\twd(deg)\tU(m/s)\tSgm_v\tu*(m/s)\tL(m)\tH(J/m2)\trho(kg/m3)\tkey(1/0==use ustar & Obu_L /use H_sensible heat)\n" +
	"1805011030\t10.5\t2.1\t0.55\t0.31\t-45.2\t120\t1.19\t1\n" +
	"1805011100\t15\t2.4\t0.6\t0.28\t-9999\t110\t1.18\t0\n"

func TestReadMetData(t *testing.T) {
	recs, err := ReadMetData(strings.NewReader(testMetTable), "met.txt", new(Summary))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("read %d records; want 2", len(recs))
	}
	r := recs[0]
	if !r.Time.Equal(testTime) {
		t.Errorf("time = %v; want %v", r.Time, testTime)
	}
	want := []float64{10.5, 2.1, 0.55, 0.31, -45.2, 120, 1.19}
	have := []float64{r.WindDir, r.WindSpeed, r.SigmaV, r.UStar, r.L, r.H, r.Rho}
	for i := range want {
		if have[i] != want[i] {
			t.Errorf("value %d = %g; want %g", i, have[i], want[i])
		}
	}
	if r.Key != UseObukhov {
		t.Errorf("key = %d; want %d", r.Key, UseObukhov)
	}
	if !math.IsNaN(recs[1].L) {
		t.Errorf("missing L = %g; want NaN", recs[1].L)
	}
	if recs[1].Key != UseSensibleHeat {
		t.Errorf("key = %d; want %d", recs[1].Key, UseSensibleHeat)
	}
	// The second record uses the heat flux, so its missing L is fine.
	if err := recs[1].Validate(); err != nil {
		t.Error(err)
	}
}

func TestMetDataRoundTrip(t *testing.T) {
	recs, err := ReadMetData(strings.NewReader(testMetTable), "met.txt", new(Summary))
	if err != nil {
		t.Fatal(err)
	}
	buf := new(bytes.Buffer)
	if err := WriteMetData(buf, recs); err != nil {
		t.Fatal(err)
	}
	recs2, err := ReadMetData(buf, "copy", new(Summary))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs2) != len(recs) {
		t.Fatalf("read back %d records; want %d", len(recs2), len(recs))
	}
	for i := range recs {
		a, b := recs[i], recs2[i]
		if !a.Time.Equal(b.Time) || a.Key != b.Key || a.UStar != b.UStar || a.WindDir != b.WindDir {
			t.Errorf("record %d: %+v != %+v", i, b, a)
		}
		if math.IsNaN(a.L) != math.IsNaN(b.L) {
			t.Errorf("record %d: L = %g; want %g", i, b.L, a.L)
		}
	}
}

func TestReadMetDataFormatError(t *testing.T) {
	swapped := strings.Replace(testMetTable, "wd(deg)\tU(m/s)", "U(m/s)\twd(deg)", 1)
	tests := []struct {
		name, in string
	}{
		{name: "empty", in: ""},
		{name: "column order", in: swapped},
		{name: "header columns", in: strings.Replace(testMetTable, "\trho(kg/m3)", "", 1)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ReadMetData(strings.NewReader(test.in), "met.txt", new(Summary))
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v; want *FormatError", err)
			}
			if fe.Line != 1 {
				t.Errorf("line = %d; want 1", fe.Line)
			}
		})
	}
}

func TestReadMetDataBadRow(t *testing.T) {
	second := testTime.Add(30 * time.Minute)
	tests := []struct {
		name, in string
		line     int       // for a *FormatError
		time     time.Time // for a *ValidationError
		keep     time.Time
	}{
		{name: "short row", in: strings.Replace(testMetTable, "\t1.19\t1\n", "\t1.19\n", 1), line: 2, keep: second},
		{name: "time", in: strings.Replace(testMetTable, "1805011100", "18-05-01", 1), line: 3, keep: testTime},
		{name: "number", in: strings.Replace(testMetTable, "0.28", "x", 1), time: second, keep: testTime},
		{name: "key", in: strings.Replace(testMetTable, "1.18\t0", "1.18\tobukhov", 1), time: second, keep: testTime},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sum := new(Summary)
			recs, err := ReadMetData(strings.NewReader(test.in), "met.txt", sum)
			if err != nil {
				t.Fatal(err)
			}
			if len(recs) != 1 || !recs[0].Time.Equal(test.keep) {
				t.Fatalf("records = %+v; want only %v", recs, test.keep)
			}
			if sum.Accepted() != 1 {
				t.Errorf("accepted %d; want 1", sum.Accepted())
			}
			errs := sum.Errors()
			if len(errs) != 1 {
				t.Fatalf("rejected %d; want 1", len(errs))
			}
			if test.line != 0 {
				var fe *FormatError
				if !errors.As(errs[0], &fe) || fe.Line != test.line {
					t.Errorf("err = %v; want *FormatError at line %d", errs[0], test.line)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(errs[0], &ve) || !ve.Time.Equal(test.time) {
				t.Errorf("err = %v; want *ValidationError at %v", errs[0], test.time)
			}
		})
	}
}

func TestReadEddyPro(t *testing.T) {
	const in = "filename,date,time,DOY,wind_speed,wind_dir,u*,L,H,rho_air,var(v)\n" +
		"a.ghg,2018-05-01,10:30,121.4,2.1,10.5,0.31,-45.2,120,1.19,0.25\n" +
		"b.ghg,2018-05-01,11:00,121.5,2.4,15,-9999,-40,110,1.18,0.36\n" +
		"c.ghg,2018-05-01,11:30,121.5,2.2,20,0.3,-38,100,1.18,0.49\n"
	sum := new(Summary)
	recs, err := ReadEddyPro(strings.NewReader(in), "essentials.csv", sum)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("read %d records; want 2", len(recs))
	}
	if sum.Accepted() != 2 || len(sum.Errors()) != 1 {
		t.Errorf("accepted %d, rejected %d; want 2, 1", sum.Accepted(), len(sum.Errors()))
	}
	var ve *ValidationError
	if !errors.As(sum.Errors()[0], &ve) || !ve.Time.Equal(testTime.Add(30*time.Minute)) {
		t.Errorf("rejection = %v", sum.Errors()[0])
	}
	r := recs[0]
	if !r.Time.Equal(testTime) {
		t.Errorf("time = %v; want %v", r.Time, testTime)
	}
	if absDifferent(r.SigmaV, 0.5, 1.e-12) {
		t.Errorf("sigma_v = %g; want 0.5", r.SigmaV)
	}
	if r.WindDir != 10.5 || r.WindSpeed != 2.1 || r.UStar != 0.31 || r.L != -45.2 || r.Key != UseObukhov {
		t.Errorf("record = %+v", r)
	}
	if absDifferent(recs[1].SigmaV, 0.7, 1.e-12) {
		t.Errorf("sigma_v = %g; want 0.7", recs[1].SigmaV)
	}

	t.Run("bad rows", func(t *testing.T) {
		bad := in +
			"d.ghg,2018-05-01,12:00,121.5,2.2,x,0.3,-38,100,1.18,0.49\n" +
			"e.ghg,2018-05-01,12:30,121.5,2.2,20\n" +
			"f.ghg,01.05.2018,13:00,121.5,2.2,20,0.3,-38,100,1.18,0.49\n"
		sum := new(Summary)
		recs, err := ReadEddyPro(strings.NewReader(bad), "essentials.csv", sum)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 2 {
			t.Errorf("read %d records; want 2", len(recs))
		}
		errs := sum.Errors()
		if len(errs) != 4 {
			t.Fatalf("rejected %d; want 4", len(errs))
		}
		var ve *ValidationError
		if !errors.As(errs[1], &ve) || !ve.Time.Equal(testTime.Add(90*time.Minute)) {
			t.Errorf("err = %v; want *ValidationError for the bad wind direction", errs[1])
		}
		for i, line := range []int{6, 7} {
			var fe *FormatError
			if !errors.As(errs[i+2], &fe) || fe.Line != line {
				t.Errorf("err = %v; want *FormatError at line %d", errs[i+2], line)
			}
		}
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := ReadEddyPro(strings.NewReader("date,time,wind_dir\n"), "bad.csv", new(Summary))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Errorf("err = %v; want *FormatError", err)
		}
	})
}
