// Package markup maps ellipse annotations between screen, displayed-image,
// and source-pixel coordinate spaces and burns them into full-resolution
// copies of the photos.
//
// Burns are one-way and cumulative: every save re-renders the complete
// pending list onto a fresh copy, writing under the marked prefix next to the
// original and mirroring the result into the working tree.
package markup
