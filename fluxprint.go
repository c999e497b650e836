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

// Package fluxprint calculates analytical flux footprints for
// eddy-covariance measurements and aggregates the resulting footprint
// grids.
//
// A footprint describes how much each upwind ground cell contributes to
// a flux measured at a point. Footprints are calculated one turbulence
// record at a time following Kormann and Meixner (2001), written to
// Surfer-style ASCII raster (DSAA) files, and averaged over groups of
// records such as hours of the day or calendar days.
package fluxprint

// Version gives the version number.
const Version = "0.3.0"

// TimeLayout is the layout of record timestamps in met tables and in
// the names of per-record grid files (yymmddHHMM).
const TimeLayout = "0601021504"
