package main

import (
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-yolox/models/postprocess"
	"golang.org/x/time/rate"
)

// Supported file extensions
var (
	supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}
	supportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}
)

// InputType represents the type of input being processed
type InputType int

const (
	InputImage InputType = iota
	InputVideo
	InputCamera
)

// InputConfig holds the input configuration
type InputConfig struct {
	Type     InputType
	Path     string
	DeviceID int
}

// parseInput resolves the -image, -video and -camera flags. Exactly one must be set.
func parseInput(imagePath, videoPath, camera string) (InputConfig, error) {
	set := 0
	for _, v := range []string{imagePath, videoPath, camera} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return InputConfig{}, fmt.Errorf("exactly one of -image, -video or -camera is required")
	}

	switch {
	case imagePath != "":
		if err := validateFile(imagePath, supportedImageExtensions); err != nil {
			return InputConfig{}, err
		}
		return InputConfig{Type: InputImage, Path: imagePath}, nil
	case videoPath != "":
		if err := validateFile(videoPath, supportedVideoExtensions); err != nil {
			return InputConfig{}, err
		}
		return InputConfig{Type: InputVideo, Path: videoPath}, nil
	default:
		id, err := strconv.Atoi(camera)
		if err != nil || id < 0 {
			return InputConfig{}, fmt.Errorf("invalid camera device id %q", camera)
		}
		return InputConfig{Type: InputCamera, DeviceID: id}, nil
	}
}

// validateFile checks that a file exists and has a supported extension.
func validateFile(filePath string, supportedExtensions []string) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s: %w", filePath, err)
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	if !slices.Contains(supportedExtensions, ext) {
		return fmt.Errorf("unsupported file extension: %s. Supported extensions: %v", ext, supportedExtensions)
	}
	return nil
}

// listModels returns the .onnx files under dir, sorted.
func listModels(dir string) ([]string, error) {
	var models []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".onnx") {
			models = append(models, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing models in %s: %w", dir, err)
	}
	slices.Sort(models)
	return models, nil
}

// boxRect converts a detection box to a pixel rectangle clipped to the frame.
func boxRect(d postprocess.Detection, width, height int) image.Rectangle {
	r := image.Rect(
		int(d.Box.X0), int(d.Box.Y0),
		int(d.Box.Right()), int(d.Box.Bottom()),
	)
	return r.Intersect(image.Rect(0, 0, width, height))
}

// newFrameLimiter returns a limiter admitting at most hz frames per second. hz <= 0 admits all.
func newFrameLimiter(hz float64) *rate.Limiter {
	if hz <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(hz), 1)
}
