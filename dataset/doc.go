// Package dataset prepares training labels for the person and PPE models.
// It converts PascalVOC XML annotations into YOLO text labels and splits a
// combined label set into a person only set and a PPE only set.
package dataset
