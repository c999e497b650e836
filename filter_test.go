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

import "testing"

func TestRecordFilter(t *testing.T) {
	r := testRecord(testTime)
	tests := []struct {
		expr string
		want bool
	}{
		{expr: "ustar > 0.1", want: true},
		{expr: "ustar > 0.1 && abs(L) > 100", want: false},
		{expr: "hour >= 9 && hour < 17", want: true},
		{expr: "key == 1 && wd < 90 && sigmav > 0.5", want: true},
		{expr: "isnan(H)", want: true},
		{expr: "wspd < 1 || L > 0", want: false},
	}
	for _, test := range tests {
		t.Run(test.expr, func(t *testing.T) {
			f, err := NewRecordFilter(test.expr)
			if err != nil {
				t.Fatal(err)
			}
			have, err := f.Match(&r)
			if err != nil {
				t.Fatal(err)
			}
			if have != test.want {
				t.Errorf("have %v, want %v", have, test.want)
			}
		})
	}
}

func TestRecordFilterErrors(t *testing.T) {
	if _, err := NewRecordFilter("ustar >"); err == nil {
		t.Error("incomplete expression should not parse")
	}
	if _, err := NewRecordFilter("temperature > 0"); err == nil {
		t.Error("unknown variable should be rejected")
	}
	f, err := NewRecordFilter("ustar * 2")
	if err != nil {
		t.Fatal(err)
	}
	r := testRecord(testTime)
	if _, err := f.Match(&r); err == nil {
		t.Error("non-boolean result should be an error")
	}
	var none *RecordFilter
	if ok, err := none.Match(&r); !ok || err != nil {
		t.Errorf("nil filter: %v, %v; want true, nil", ok, err)
	}
}
