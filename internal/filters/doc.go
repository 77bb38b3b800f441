// Package filters holds VisionFlow's stateless image transforms and the
// default operation registry.
//
// Every filter takes an image.Image and returns a new opaque *image.NRGBA;
// inputs are never modified. Filters are grouped by concern:
//
//   - color: white balance, exposure, contrast, saturation, HSL, curves
//   - focus: Gaussian blur, depth of field, radial blur, tilt-shift, sharpen
//   - lens: vignette, chromatic aberration, distortion, bokeh, aperture
//   - texture: denoise, detail enhancement, grain, skin smoothing,
//     frequency separation, clarity
//   - grading: shadow/midtone/highlight color grade, lookup tables
//   - geometry: crop and resize
//
// Registry returns the filters as pipeline operations keyed by snake_case
// name (see Operations for the parameter schema of each).
package filters
