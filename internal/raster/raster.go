// Package raster provides scanline rasterization of triangulated surfaces
// onto regular grids of values.
package raster
