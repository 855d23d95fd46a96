// Package viz renders flocks in the terminal.
//
// Boids are projected through an orbiting [Camera] onto a braille [Canvas],
// together with the wireframe of the bounds sphere and a marker per field.
// [Model] is the Bubble Tea program behind `flocksim live`; camera input is
// eased through a [CameraRig] of harmonica springs.
//
// # Key Bindings
//
//	Space     - Pause/Resume
//	N         - Single step while paused
//	R         - Restart from the seed
//	←/→ ↑/↓   - Orbit the camera
//	+/-       - Zoom
//	0         - Reset camera
//	T         - Cycle color themes
//	?         - Show help overlay
package viz
