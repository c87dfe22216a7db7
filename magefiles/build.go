// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main holds the rowkit Mage targets.
//
//	mage build            rowkit binary in bin/, version stamped from git
//	mage install          go install with the same version stamp
//	mage test             unit tests on temporary SQLite files
//	mage testRace         unit tests with the race detector
//	mage testIntegration  PostgreSQL tests in a container (needs Docker)
//	mage cover            coverage profile and per-function summary
//	mage lint             golangci-lint
//	mage clean            remove bin/
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/sh"
)

const (
	binGo       = "go"
	binaryDir   = "bin"
	rowkitCmd   = "./cmd/rowkit"
	versionFlag = "github.com/mesh-intelligence/rowkit/pkg/rowkit.Version"
)

// ldflags stamps the version from `git describe`; outside a git checkout
// the default in pkg/rowkit stays.
func ldflags() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || out == "" {
		return "-s -w"
	}
	return "-s -w -X " + versionFlag + "=" + strings.TrimPrefix(out, "v")
}

// Build writes the rowkit binary to bin/rowkit.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, "rowkit"), rowkitCmd)
}

// Install runs go install for cmd/rowkit with the version stamp.
func Install() error {
	return sh.RunV(binGo, "install", "-ldflags", ldflags(), rowkitCmd)
}

// Lint runs golangci-lint over every package, including the integration
// tests.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "--build-tags", "integration", "./...")
}

// Clean removes bin/.
func Clean() error {
	return os.RemoveAll(binaryDir)
}
