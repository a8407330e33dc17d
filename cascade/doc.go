/*
Package cascade implements two stage object detection where a first stage
detector restricts the regions passed to a second, more specialised one.

A person detector is run on the full image.  Each person box that meets
the confidence threshold is clamped to the image, cropped out and passed to
the PPE detector.  PPE boxes found inside a crop are moved back into full
image coordinates by the crop's top left corner, so the result is a single
detection set in the frame of the source image.

Person boxes themselves are only used as crop regions; Result.PPE holds the
detections intended for rendering.
*/
package cascade
