// Package render draws the raster artifacts produced by the banner and emoji
// recipes and writes them as PNG files under the configured output directory.
package render
