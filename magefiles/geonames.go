// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Geonames groups the gazetteer targets.
type Geonames mg.Namespace

// Fetch downloads the default dumps into the configured dump directory.
func (Geonames) Fetch() error {
	mg.Deps(Build, Init)
	return sh.RunV(binary(), "geonames", "fetch")
}

// Index fetches missing dumps and indexes them into the yard.
func (Geonames) Index() error {
	mg.SerialDeps(Geonames.Fetch)
	return sh.RunV(binary(), "geonames", "index")
}
