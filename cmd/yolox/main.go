// Command yolox runs YOLOX object detection on an image, a video file or a camera.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nvr-ai/go-yolox/config"
	"github.com/nvr-ai/go-yolox/inference"
	"github.com/nvr-ai/go-yolox/inference/providers"
	"github.com/nvr-ai/go-yolox/log"
	"github.com/nvr-ai/go-yolox/models"
	"github.com/nvr-ai/go-yolox/models/postprocess"
	"github.com/nvr-ai/go-yolox/profiler"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
	"golang.org/x/time/rate"
)

const (
	// DefaultConfigPath is read when -config is not given.
	DefaultConfigPath = "yolox.yaml"
	// DefaultOutputDir is where annotated frames are written.
	DefaultOutputDir = "detections"
)

type flags struct {
	configPath  string
	modelPath   string
	imagePath   string
	videoPath   string
	camera      string
	device      int
	outputDir   string
	listModels  string
	listDevices bool
	confidence  float64
	nms         float64
	maxFrames   int
	maxRate     float64
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", DefaultConfigPath, "Path to the YAML configuration")
	flag.StringVar(&f.modelPath, "model", "", "Path to the YOLOX ONNX model; overrides model.path")
	flag.StringVar(&f.imagePath, "image", "", "Path to image file (.jpg, .jpeg, .png, .bmp)")
	flag.StringVar(&f.videoPath, "video", "", "Path to video file (.mp4, .avi, .mov, .mkv)")
	flag.StringVar(&f.camera, "camera", "", "Camera device id")
	flag.IntVar(&f.device, "device", -1, "Device index; overrides model.device")
	flag.StringVar(&f.outputDir, "out", DefaultOutputDir, "Output directory for annotated frames; empty disables")
	flag.StringVar(&f.listModels, "list-models", "", "List the .onnx models under a directory and exit")
	flag.BoolVar(&f.listDevices, "list-devices", false, "List the usable devices and exit")
	flag.Float64Var(&f.confidence, "conf", -1, "Confidence threshold; overrides detection.confidence_threshold")
	flag.Float64Var(&f.nms, "nms", -1, "NMS threshold; overrides detection.nms_threshold")
	flag.IntVar(&f.maxFrames, "max-frames", 0, "Stop a video or camera after this many frames; 0 runs to the end")
	flag.Float64Var(&f.maxRate, "max-rate", -1, "Maximum inferences per second; overrides stream.max_inference_rate_hz")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: loading .env: %v\n", err)
	}

	if f.listModels != "" {
		paths, err := listModels(f.listModels)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, f); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(f flags) (*config.Config, error) {
	cfg, err := config.Read(f.configPath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist) && f.modelPath != "":
		d := config.Default()
		cfg = &d
	default:
		return nil, err
	}

	if f.modelPath != "" {
		cfg.Model.Path = f.modelPath
	}
	if f.device >= 0 {
		cfg.Model.Device = f.device
	}
	if f.confidence >= 0 {
		cfg.Detection.ConfidenceThreshold = float32(f.confidence)
	}
	if f.nms >= 0 {
		cfg.Detection.NMSThreshold = float32(f.nms)
	}
	if f.maxRate >= 0 {
		cfg.Stream.MaxInferenceRateHz = f.maxRate
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, f flags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	logger, err := log.NewLogger(cfg.Log.Options())
	if err != nil {
		return err
	}

	rt, err := providers.NewRuntime(cfg.Runtime, logger)
	if err != nil {
		return err
	}

	prof := profiler.New(profiler.DefaultMaxSamples)
	session, err := inference.NewSession(rt,
		inference.WithLogger(logger),
		inference.WithProfiler(prof),
		inference.WithModelOptions(cfg.Detection.ModelOptions()),
		inference.WithScaleExtents(cfg.Detection.ScaleExtents),
	)
	if err != nil {
		return err
	}
	defer session.Close()

	entry := log.FromContext(log.WithSessionID(ctx, session.ID()), logger)

	if f.listDevices {
		devices, err := session.AvailableDevices()
		if err != nil {
			return err
		}
		for i, d := range devices {
			fmt.Printf("%d\t%s\n", i, d)
		}
		return nil
	}

	input, err := parseInput(f.imagePath, f.videoPath, f.camera)
	if err != nil {
		return err
	}

	if f.outputDir != "" {
		if err := os.MkdirAll(f.outputDir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	d := &detector{
		cfg:       cfg,
		session:   session,
		logger:    entry,
		outputDir: f.outputDir,
	}
	defer d.close()

	if input.Type == InputImage {
		err = d.processImage(ctx, input.Path)
	} else {
		err = d.processStream(ctx, input, f.maxFrames)
	}

	prof.Report(entry)
	return err
}

// detector feeds gocv frames through a session.
type detector struct {
	cfg       *config.Config
	session   *inference.Session
	logger    *logrus.Entry
	outputDir string

	rgba          gocv.Mat
	haveRGBA      bool
	width, height int
}

func (d *detector) close() {
	if d.haveRGBA {
		d.rgba.Close()
	}
}

// prepare initializes the session for frames of the given size, or resizes it when the size changed.
func (d *detector) prepare(width, height int) error {
	if d.session.State() == inference.StateReady && width == d.width && height == d.height {
		return nil
	}

	if d.session.State() == inference.StateUnconfigured {
		w, h := d.cfg.Model.Width, d.cfg.Model.Height
		if w == 0 || h == 0 {
			w, h = width, height
		}
		device, err := d.session.Init(d.cfg.Model.Path, w, h, d.cfg.Model.Device)
		if err != nil {
			return err
		}
		d.logger.WithField("device", device).Info("session initialized")
		if w == width && h == height {
			d.width, d.height = width, height
			return nil
		}
	}

	if err := d.session.SetInputDims(width, height); err != nil {
		return err
	}
	if _, err := d.session.BindToDevice(d.cfg.Model.Device); err != nil {
		return err
	}
	d.width, d.height = width, height
	return nil
}

// detect runs one BGR frame and returns its detections.
func (d *detector) detect(ctx context.Context, frame gocv.Mat) ([]postprocess.Detection, error) {
	if err := d.prepare(frame.Cols(), frame.Rows()); err != nil {
		return nil, err
	}

	if !d.haveRGBA {
		d.rgba = gocv.NewMat()
		d.haveRGBA = true
	}
	gocv.CvtColor(frame, &d.rgba, gocv.ColorBGRToRGBA)

	if _, err := d.session.Infer(ctx, d.rgba.ToBytes()); err != nil {
		return nil, err
	}
	return d.session.Objects(), nil
}

func (d *detector) report(frame int, dets []postprocess.Detection) {
	for i, det := range dets {
		d.logger.WithFields(logrus.Fields{
			"frame": frame,
			"index": i,
			"class": models.COCOClasses.Name(det.Label),
			"prob":  fmt.Sprintf("%.2f", det.Prob),
			"box": fmt.Sprintf("(%.0f,%.0f %.0fx%.0f)",
				det.Box.X0, det.Box.Y0, det.Box.Width, det.Box.Height),
		}).Info("detection")
	}
}

// draw annotates frame with the detections in their class colors.
func draw(frame *gocv.Mat, dets []postprocess.Detection) {
	for _, det := range dets {
		rect := boxRect(det, frame.Cols(), frame.Rows())
		if rect.Empty() {
			continue
		}
		c := models.COCOClasses.Color(det.Label)
		gocv.Rectangle(frame, rect, c, 2)
		label := fmt.Sprintf("%s %.2f", models.COCOClasses.Name(det.Label), det.Prob)
		gocv.PutText(frame, label, image.Pt(rect.Min.X, max(rect.Min.Y-4, 12)), gocv.FontHersheyPlain, 1.0, c, 2)
	}
}

func (d *detector) processImage(ctx context.Context, path string) error {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return fmt.Errorf("error reading image: %s", path)
	}
	defer img.Close()

	d.logger.WithFields(logrus.Fields{"image": path, "width": img.Cols(), "height": img.Rows()}).Info("processing image")

	dets, err := d.detect(ctx, img)
	if err != nil {
		return err
	}
	d.report(0, dets)

	if d.outputDir == "" {
		return nil
	}
	draw(&img, dets)
	out := filepath.Join(d.outputDir, "processed_"+filepath.Base(path))
	if !gocv.IMWrite(out, img) {
		return fmt.Errorf("failed to save processed image to %s", out)
	}
	d.logger.WithField("output", out).Info("processed image saved")
	return nil
}

func (d *detector) processStream(ctx context.Context, input InputConfig, maxFrames int) error {
	var source interface{} = input.DeviceID
	if input.Type == InputVideo {
		source = input.Path
	}

	capture, err := gocv.OpenVideoCapture(source)
	if err != nil {
		return fmt.Errorf("error opening video capture %v: %w", source, err)
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	limiter := newFrameLimiter(d.cfg.Stream.MaxInferenceRateHz)

	for n := 0; maxFrames == 0 || n < maxFrames; n++ {
		if ctx.Err() != nil {
			return nil
		}
		if ok := capture.Read(&frame); !ok {
			d.logger.WithField("frames", n).Info("end of stream")
			return nil
		}
		if frame.Empty() || !limiter.Allow() {
			continue
		}

		dets, err := d.detect(ctx, frame)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			return err
		}
		d.report(n, dets)

		if d.outputDir != "" && len(dets) > 0 {
			draw(&frame, dets)
			out := filepath.Join(d.outputDir, fmt.Sprintf("frame_%06d.jpg", n))
			if !gocv.IMWrite(out, frame) {
				d.logger.WithField("output", out).Warn("failed to save frame")
			}
		}
	}
	return nil
}
