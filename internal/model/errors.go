package model

import "github.com/rotisserie/eris"

// Error kinds surfaced by a render pass. Callers wrap these with eris and
// test for them with errors.Is.
var (
	// ErrConfiguration marks an unknown selection key or an invalid ramp.
	ErrConfiguration = eris.New("configuration error")

	// ErrEmptyDataset marks a statistic requested over zero qualifying records.
	ErrEmptyDataset = eris.New("empty dataset")

	// ErrDataIntegrity marks upstream data corruption: duplicate region ids or
	// conflicting county names for the same region across datasets.
	ErrDataIntegrity = eris.New("data integrity error")
)
