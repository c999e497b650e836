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

	"github.com/Knetic/govaluate"
)

// filterFunctions are the functions available to record filter
// expressions in addition to the govaluate operators.
var filterFunctions = map[string]govaluate.ExpressionFunction{
	"abs": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("fluxprint: got %d arguments for function 'abs', but needs 1", len(arg))
		}
		return math.Abs(arg[0].(float64)), nil
	},
	"isnan": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("fluxprint: got %d arguments for function 'isnan', but needs 1", len(arg))
		}
		return math.IsNaN(arg[0].(float64)), nil
	},
}

// filterVariables are the variable names a filter expression may use.
var filterVariables = map[string]bool{
	"wd": true, "wspd": true, "sigmav": true, "ustar": true,
	"L": true, "H": true, "rho": true, "key": true, "hour": true,
}

// RecordFilter selects turbulence records using a boolean expression
// such as "ustar > 0.1 && abs(L) < 500". Expressions can refer to the
// variables wd, wspd, sigmav, ustar, L, H, rho, key and hour, and to
// the functions abs and isnan.
type RecordFilter struct {
	expr *govaluate.EvaluableExpression
	src  string
}

// NewRecordFilter parses expr. Unknown variable names are an error.
func NewRecordFilter(expr string) (*RecordFilter, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, filterFunctions)
	if err != nil {
		return nil, fmt.Errorf("fluxprint: parsing filter %q: %v", expr, err)
	}
	for _, v := range e.Vars() {
		if !filterVariables[v] {
			return nil, fmt.Errorf("fluxprint: filter %q uses unknown variable %q", expr, v)
		}
	}
	return &RecordFilter{expr: e, src: expr}, nil
}

// String returns the filter expression.
func (f *RecordFilter) String() string { return f.src }

// Match reports whether r passes the filter. A nil filter matches
// every record.
func (f *RecordFilter) Match(r *TurbulenceRecord) (bool, error) {
	if f == nil {
		return true, nil
	}
	res, err := f.expr.Evaluate(map[string]interface{}{
		"wd":     r.WindDir,
		"wspd":   r.WindSpeed,
		"sigmav": r.SigmaV,
		"ustar":  r.UStar,
		"L":      r.L,
		"H":      r.H,
		"rho":    r.Rho,
		"key":    float64(r.Key),
		"hour":   float64(r.Time.Hour()),
	})
	if err != nil {
		return false, fmt.Errorf("fluxprint: evaluating filter %q: %v", f.src, err)
	}
	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("fluxprint: filter %q returned %v, not a boolean", f.src, res)
	}
	return ok, nil
}
