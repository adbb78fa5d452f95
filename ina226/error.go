// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina226

import "fmt"

// ParameterRangeError is returned by Calibrate when the shunt or current
// parameters fall outside what the calibration register can express. No
// register is written when it is returned.
type ParameterRangeError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ParameterRangeError) Error() string {
	return fmt.Sprintf("ina226: %s %s out of range: %s", e.Param, e.Value, e.Reason)
}
