/*
go-ppecascade annotates personal protective equipment (PPE) worn by people
in images using two object detection Models run as a cascade.

A person detection Model finds people in the full image, then a PPE
detection Model is run on the crop of each person.  PPE detections are
mapped back onto the full image and drawn.

This package loads YOLOv8 Models exported to ONNX through the OpenCV DNN
module and provides a runtime Pool so a Model can serve several goroutines.
The cascade itself lives in the cascade subpackage, rendering in render,
directory processing in batch and the dataset preparation tools in
dataset.

See the command line programs in the cmd subdirectory for usage.
*/
package ppecascade
