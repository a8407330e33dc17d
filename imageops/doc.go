/*
Package imageops provides the image decode, encode and cropping operations
used by the cascade.

Two frame types are provided.  MatFrame wraps a gocv Mat and is what the
inference command uses, ImageFrame wraps a pure Go image.Image and is
useful where OpenCV is not wanted, such as in tests.  Both report their
bounds with the origin at (0,0) and produce crops in the same local frame.
*/
package imageops
