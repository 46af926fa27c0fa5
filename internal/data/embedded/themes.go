// Package embedded provides access to embedded theme and documentation files.
package embedded

import _ "embed"

// LightThemeData contains the embedded light theme YAML data.
//
//go:embed themes/light.yaml
var LightThemeData []byte

// DarkThemeData contains the embedded dark theme YAML data.
//
//go:embed themes/dark.yaml
var DarkThemeData []byte

// DimThemeData contains the embedded dim theme YAML data.
//
//go:embed themes/dim.yaml
var DimThemeData []byte

// SolarizedThemeData contains the embedded solarized theme YAML data.
//
//go:embed themes/solarized.yaml
var SolarizedThemeData []byte
