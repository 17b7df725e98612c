// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/placesbot/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
