// Copyright (C) 2026  Nexedi SA and Contributors.
//
// This program is free software: you can Use, Study, Modify and Redistribute
// it under the terms of the GNU General Public License version 3, or (at your
// option) any later version, as published by the Free Software Foundation.
//
// You can also Link and Combine this program with other software covered by
// the terms of any of the Free Software licenses or any of the Open Source
// Initiative approved licenses and Convey the resulting work. Corresponding
// source of such a combination shall include the source code for all other
// software used.
//
// This program is distributed WITHOUT ANY WARRANTY; without even the implied
// warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//
// See COPYING file for full licensing terms.
// See https://www.nexedi.com/licensing for rationale and options.

package main
// misc utilities

import (
	"context"
	"fmt"

	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"lab.nexedi.com/kirr/rangecov/internal/rangeset"
	"lab.nexedi.com/kirr/rangecov/internal/sensor"
)

// exit codes
const (
	exitOK       = 0
	exitFailure  = 1
	exitInvalid  = 2
	exitCanceled = 130 // as after SIGINT
)

// eInvalError is the error wrapper signifying that underlying error is about "invalid argument".
// err2ExitCode converts such errors into exitInvalid + logs as warning.
type eInvalError struct {
	err error
}

func (e *eInvalError) Error() string {
	return "invalid argument: " + e.err.Error()
}

// don't propagate eInvalError.Cause -> e.err

func eINVAL(err error) *eInvalError {
	return &eInvalError{err}
}

func eINVALf(format string, argv ...interface{}) *eInvalError {
	return eINVAL(fmt.Errorf(format, argv...))
}

// err2ExitCode converts an error into process exit code and logs it appropriately.
func err2ExitCode(err error) int {
	// no error
	if err == nil {
		return exitOK
	}

	// interrupted - don't log
	if errors.Is(err, context.Canceled) {
		return exitCanceled
	}

	// otherwise log as warnings bad input and as errors everything else
	var einval *eInvalError
	switch {
	case errors.As(err, &einval),
		errors.Is(err, sensor.ErrBadReport),
		errors.Is(err, rangeset.ErrInvalidRange):
		log.WarningDepth(1, err)
		return exitInvalid

	default:
		log.ErrorDepth(1, err)
		return exitFailure
	}
}
