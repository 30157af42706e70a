// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Yard groups the entity store targets.
type Yard mg.Namespace

// Export dumps the yard to data/export.yaml.
func (Yard) Export() error {
	mg.Deps(Build)
	out := filepath.Join("data", "export.yaml")
	if err := sh.RunV(binary(), "yard", "export", "--format", "yaml", "--out", out); err != nil {
		return err
	}
	fmt.Println("Exported to", out)
	return nil
}

// Count prints the number of stored representations.
func (Yard) Count() error {
	mg.Deps(Build)
	return sh.RunV(binary(), "yard", "count")
}
