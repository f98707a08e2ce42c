// Package gridding interpolates scattered point measurements onto regular
// grids.
//
// # Overview
//
// A PointSet holds (x, y, value) samples. New builds an Interpolator of one
// of six methods over it, Rasterize evaluates the interpolator at every cell
// centre of a Grid, and CrossValidate estimates how well a method predicts
// held-out points.
//
// # Quick Start
//
//	import "github.com/gogpu/gridding"
//
//	points := gridding.NewPointSet(samples)
//	ip, err := gridding.New(gridding.InverseDistance, points,
//	    gridding.WithSearch(gridding.SearchConfig{MaxPoints: 12}),
//	)
//	if err != nil {
//	    return err
//	}
//	grid, err := gridding.SuggestGrid(points)
//	if err != nil {
//	    return err
//	}
//	err = gridding.Rasterize(ctx, grid, ip)
//
// # Methods
//
//   - InverseDistance: weighted mean of the neighbours (see Weighting)
//   - AngularDistanceWeighted: inverse distance with a directional correction
//   - ModifiedQuadraticShepard: blended local quadratics (ACM TOMS 660)
//   - Triangulation: linear within Delaunay triangles
//   - NearestNeighbour: value of the closest point
//   - NaturalNeighbour: Sibson interpolation over the triangulation
//
// # Coordinate System
//
// Grid cell (x, y) is centred at (XMin + x·CellSize, YMin + y·CellSize).
// Rows grow with y, so row 0 is the southern edge of the extent.
//
// # Concurrency
//
// PointSet, SpatialIndex and Interpolator are read-only after construction.
// Per-caller search state lives in a Query (or a Cursor for a bare
// SpatialIndex); Rasterize gives each worker its own.
package gridding

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
