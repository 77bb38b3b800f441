// Package imaging provides image I/O and analysis for VisionFlow.
//
// It loads images from disk into a normalized representation, saves them in
// the format implied by the file extension, and computes the technical
// analysis reported by the analyze command: dimensions, brightness
// statistics, per-channel histograms, sharpness and dominant colors.
//
// # Pixel Representation
//
// Loaded images are *image.NRGBA with every alpha value set to 255, which is
// how VisionFlow represents 3-channel 8-bit RGB. EXIF orientation is applied
// on load, so pixel (0,0) is always the visual top-left corner.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Analysis functions are
// stateless and can be called concurrently. Images returned from the cache are
// shared and must not be modified; clone them first.
//
// # Supported Formats
//
// Decoding: PNG, JPEG, GIF, BMP, TIFF and WebP. Encoding: PNG, JPEG, GIF, BMP
// and TIFF.
package imaging
