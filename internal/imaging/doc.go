// Package imaging prepares workspace images for the vision backend.
//
// This package implements the pixel side of the bridge: decoding the
// accepted formats, flattening and downscaling images into the single
// rendition the model is shown, cropping regions, and reading metadata.
// All operations work with standard Go image.Image types and use a
// coordinate system where (0,0) is at the top-left corner, X increases
// rightward, and Y increases downward.
//
// # Supported Formats
//
// The registered decoders are exactly the formats the server accepts:
// PNG, JPEG, WebP, and BMP. WebP is decode-only, which is fine because
// every image leaves this package re-encoded as PNG.
//
// # Normalization
//
// A Normalized image is opaque (any alpha is composited over black),
// bounded so its longer side does not exceed the configured edge, and
// PNG-encoded in memory. Both axes scale by the same factor with
// fractional pixels truncated; images within the bound pass through at
// their original size. Nothing is ever written to disk.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// Region coordinates always address the original image, never the
// normalized rendition.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Content that does not decode as a supported format (ErrDecode)
//   - Regions outside image bounds
//   - Invalid region specifications (x1 >= x2 or y1 >= y2)
//   - File I/O errors during image loading
package imaging
