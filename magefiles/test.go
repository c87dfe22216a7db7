// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test runs the unit tests. They use temporary SQLite files and need no
// services.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// TestRace runs the unit tests with the race detector.
func TestRace() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// TestIntegration runs the tests behind the integration build tag. They
// start a PostgreSQL container through testcontainers and need Docker.
func TestIntegration() error {
	mg.Deps(Build)
	if _, err := exec.LookPath("docker"); err != nil {
		return fmt.Errorf("integration tests need docker: %w", err)
	}
	return sh.RunV(binGo, "test", "-tags", "integration", "-count=1", "./...")
}

// Cover writes a coverage profile to bin/cover.out and prints the summary.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := binaryDir + "/cover.out"
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}
