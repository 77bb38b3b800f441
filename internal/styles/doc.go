// Package styles holds named looks built from the filter library.
//
// A style is a flat table of parameters (temperature, tint, exposure,
// contrast, saturation, clarity, vignette, grain). Applying a style at an
// intensity scales each parameter towards its neutral value and runs the
// matching filters in a fixed order. Keys the order does not know, such as
// glow or brightness_lift, are kept with the style but have no effect.
//
// Each Creator owns its style table; defining a style on one Creator is not
// visible to another.
package styles
