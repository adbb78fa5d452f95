// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package powermon is a container for the INA226 power monitor driver and
// its command line tool.
//
// The driver lives in package ina226, shared register helpers in common and
// the tool in cmd/ina226.
package powermon
