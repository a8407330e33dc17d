// Package batch runs the person to PPE cascade over every image in a
// directory and writes annotated copies to an output directory.
package batch
