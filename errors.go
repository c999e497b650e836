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
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ValidationError is returned when a turbulence record does not meet
// the preconditions of the footprint model.
type ValidationError struct {
	Time   time.Time
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("fluxprint: invalid record %s: %s", e.Time.Format(TimeLayout), e.Reason)
}

// DegenerateModelError is returned when the footprint model produces a
// non-physical intermediate or final result.
type DegenerateModelError struct {
	Time   time.Time
	Reason string
}

func (e *DegenerateModelError) Error() string {
	if e.Time.IsZero() {
		return fmt.Sprintf("fluxprint: degenerate footprint model: %s", e.Reason)
	}
	return fmt.Sprintf("fluxprint: degenerate footprint model for record %s: %s",
		e.Time.Format(TimeLayout), e.Reason)
}

// FormatError is returned when a file does not follow the expected
// layout. Line is 1-based; zero means the position is not known.
type FormatError struct {
	File   string
	Line   int
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("fluxprint: %s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("fluxprint: %s: %s", e.File, e.Reason)
}

// ShapeMismatchError is returned when grids with different dimensions
// or extents are combined.
type ShapeMismatchError struct {
	// Member identifies the offending grid, usually a file path.
	Member    string
	Want, Got Shape
}

func (e *ShapeMismatchError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("fluxprint: grid shape %v does not match %v", e.Got, e.Want)
	}
	return fmt.Sprintf("fluxprint: grid %s has shape %v but %v was expected", e.Member, e.Got, e.Want)
}

// GroupError is reported when a group of grids cannot be averaged.
type GroupError struct {
	Group string
	Err   error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("fluxprint: group %s: %v", e.Group, e.Err)
}

// Unwrap returns the underlying error.
func (e *GroupError) Unwrap() error { return e.Err }

// Summary collects the outcome of a batch operation. One bad record or
// file does not stop a batch; instead the error is kept here so it can
// be reported when the batch is finished. It is safe for concurrent use.
type Summary struct {
	mu       sync.Mutex
	accepted int
	skipped  int
	errs     []error
}

// Accept counts one successfully processed item.
func (s *Summary) Accept() {
	s.mu.Lock()
	s.accepted++
	s.mu.Unlock()
}

// Skip counts one item that was intentionally left out, for example
// by a record filter.
func (s *Summary) Skip() {
	s.mu.Lock()
	s.skipped++
	s.mu.Unlock()
}

// Reject records an item that could not be processed.
func (s *Summary) Reject(err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

// Accepted returns the number of successfully processed items.
func (s *Summary) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Skipped returns the number of intentionally skipped items.
func (s *Summary) Skipped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// Errors returns a copy of the recorded errors in the order they were
// recorded.
func (s *Summary) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]error(nil), s.errs...)
}

// Log writes the summary to log.
func (s *Summary) Log(log logrus.FieldLogger, stage string) {
	errs := s.Errors()
	log.WithFields(logrus.Fields{
		"stage":    stage,
		"accepted": s.Accepted(),
		"skipped":  s.Skipped(),
		"rejected": len(errs),
	}).Info("finished")
	for _, err := range errs {
		log.WithField("stage", stage).Warn(err)
	}
}
