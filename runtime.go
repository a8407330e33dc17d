package ppecascade

import (
	"fmt"
	"gocv.io/x/gocv"
	"image"
	"os"
	"strings"
)

// Device selects the hardware a Model is run on
type Device string

const (
	DeviceCPU    Device = "cpu"
	DeviceCUDA   Device = "cuda"
	DeviceOpenCL Device = "opencl"
)

// ParseDevice returns the Device named by s
func ParseDevice(s string) (Device, error) {

	switch d := Device(strings.ToLower(strings.TrimSpace(s))); d {
	case DeviceCPU, DeviceCUDA, DeviceOpenCL:
		return d, nil
	case "":
		return DeviceCPU, nil
	default:
		return "", fmt.Errorf("unknown device %q, choose cpu, cuda or opencl", s)
	}
}

// backendTarget returns the gocv DNN backend and target for the device
func (d Device) backendTarget() (gocv.NetBackendType, gocv.NetTargetType) {

	switch d {
	case DeviceCUDA:
		return gocv.NetBackendCUDA, gocv.NetTargetCUDA
	case DeviceOpenCL:
		return gocv.NetBackendOpenCV, gocv.NetTargetFP32
	default:
		return gocv.NetBackendDefault, gocv.NetTargetCPU
	}
}

// RuntimeConfig defines the Model to load and how to run it
type RuntimeConfig struct {
	// ModelFile is the path to the ONNX exported Model
	ModelFile string
	// InputWidth is the width of the Model's input tensor
	InputWidth int
	// InputHeight is the height of the Model's input tensor
	InputHeight int
	// Device is the hardware to run the Model on
	Device Device
}

// DefaultRuntimeConfig returns the config for a YOLOv8 Model exported at
// its default 640x640 input size and run on the CPU
func DefaultRuntimeConfig(modelFile string) RuntimeConfig {
	return RuntimeConfig{
		ModelFile:   modelFile,
		InputWidth:  640,
		InputHeight: 640,
		Device:      DeviceCPU,
	}
}

// Runtime defines a loaded Model instance.  A Runtime must only be used by
// one goroutine at a time, use a Pool to share Models between goroutines.
type Runtime struct {
	net       gocv.Net
	inputSize image.Point
}

// NewRuntime loads the Model in cfg and prepares it for inference
func NewRuntime(cfg RuntimeConfig) (*Runtime, error) {

	// check file exists in Go, before passing to OpenCV
	info, err := os.Stat(cfg.ModelFile)

	if err != nil {
		return nil, fmt.Errorf("model file does not exist at %s, error: %w",
			cfg.ModelFile, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("model file is a directory")
	}

	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return nil, fmt.Errorf("invalid model input size %dx%d",
			cfg.InputWidth, cfg.InputHeight)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelFile)

	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("failed to load model from %s", cfg.ModelFile)
	}

	backend, target := cfg.Device.backendTarget()

	if err := net.SetPreferableBackend(backend); err != nil {
		net.Close()
		return nil, fmt.Errorf("error setting backend for device %s: %w", cfg.Device, err)
	}

	if err := net.SetPreferableTarget(target); err != nil {
		net.Close()
		return nil, fmt.Errorf("error setting target for device %s: %w", cfg.Device, err)
	}

	return &Runtime{
		net:       net,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// InputSize returns the width and height of the Model's input tensor
func (r *Runtime) InputSize() image.Point {
	return r.inputSize
}

// Inference runs the Model on img, which must already be sized to the input
// tensor dimensions and in BGR order.  The caller must close the returned
// output Mat.
func (r *Runtime) Inference(img gocv.Mat) (gocv.Mat, error) {

	blob := gocv.BlobFromImage(img, 1.0/255.0, r.inputSize,
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	r.net.SetInput(blob, "")

	output := r.net.Forward("")

	if output.Empty() {
		output.Close()
		return gocv.NewMat(), fmt.Errorf("model forward pass returned no output")
	}

	return output, nil
}

// Close unloads the Model and releases its resources
func (r *Runtime) Close() error {
	return r.net.Close()
}
