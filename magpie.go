// Package magpie normalizes bundler build reports into a cross-linked model.
package magpie

// Version is the current magpie release.
const Version = "0.1.0"
