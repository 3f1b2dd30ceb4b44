// Package calib computes the screen registration board sent to the tracker.
package calib

import (
	"fmt"

	"github.com/frudas24/gazewaldo/internal/coords"
)

const (
	mmPerInch = 25.4

	// MarkerDictionary names the ArUco dictionary the board markers come from.
	MarkerDictionary = "DICT_4X4_50"
	// MarkerSizeMM is the printed edge length of each marker.
	MarkerSizeMM = 20.0
	// EdgeOffsetMM is the gap between a marker and the closest screen edges.
	EdgeOffsetMM = 10.0
)

// Marker is one fiducial on the board, in metres from the top-left screen corner.
// Y grows negative downwards, as the tracker expects.
type Marker struct {
	ID   int     `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Board describes the physical screen and the markers drawn on it.
type Board struct {
	WidthM     float64  `json:"width"`
	HeightM    float64  `json:"height"`
	Dictionary string   `json:"dictionary"`
	MarkerIDs  []int    `json:"markerIds"`
	Markers    []Marker `json:"markers"`
}

// ScreenSizeMM converts a pixel size into millimetres using the display DPI.
func ScreenSizeMM(pixels coords.Size, dpiX, dpiY float64) (coords.Size, error) {
	if err := pixels.Validate(); err != nil {
		return coords.Size{}, err
	}
	dpi := coords.Size{W: dpiX, H: dpiY}
	if err := dpi.Validate(); err != nil {
		return coords.Size{}, fmt.Errorf("dpi: %w", err)
	}
	return coords.Size{W: pixels.W * mmPerInch / dpiX, H: pixels.H * mmPerInch / dpiY}, nil
}

// NewBoard lays the four markers out in the screen corners.
// IDs run top-left, top-right, bottom-left, bottom-right.
func NewBoard(sizeMM coords.Size) (Board, error) {
	if err := sizeMM.Validate(); err != nil {
		return Board{}, err
	}
	w := sizeMM.W * 1e-3
	h := sizeMM.H * 1e-3
	m := MarkerSizeMM * 1e-3
	off := EdgeOffsetMM * 1e-3
	if w < 2*(off+m) || h < 2*(off+m) {
		return Board{}, fmt.Errorf("%w: screen %gx%gmm too small for markers", coords.ErrInvalidDimension, sizeMM.W, sizeMM.H)
	}

	left := off
	right := w - off - m
	top := -off - m
	bottom := -h + off

	positions := [][2]float64{{left, top}, {right, top}, {left, bottom}, {right, bottom}}
	b := Board{WidthM: w, HeightM: h, Dictionary: MarkerDictionary}
	for i, p := range positions {
		b.MarkerIDs = append(b.MarkerIDs, i)
		b.Markers = append(b.Markers, Marker{ID: i, X: p[0], Y: p[1], Size: m})
	}
	return b, nil
}
