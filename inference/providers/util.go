// Package providers - Shared library discovery and environment setup.
package providers

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// LibraryPathEnv overrides the onnxruntime shared library location.
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

var envMu sync.Mutex

// defaultLibPaths returns the shared library candidates for the current platform.
func defaultLibPaths() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"./third_party/onnxruntime.dll", "../third_party/onnxruntime.dll"}
	case "darwin":
		return []string{
			"./third_party/libonnxruntime.dylib",
			"/opt/homebrew/lib/libonnxruntime.dylib",
			"/usr/local/lib/libonnxruntime.dylib",
		}
	case "linux":
		if runtime.GOARCH == "arm64" {
			return []string{
				"./third_party/onnxruntime_arm64.so",
				"../third_party/onnxruntime_arm64.so",
				"/usr/local/lib/libonnxruntime.so",
				"/usr/lib/libonnxruntime.so",
			}
		}
		return []string{
			"./third_party/onnxruntime.so",
			"../third_party/onnxruntime.so",
			"/usr/local/lib/libonnxruntime.so",
			"/usr/lib/libonnxruntime.so",
			"/opt/onnxruntime/cpu/lib/libonnxruntime.so",
		}
	default:
		return nil
	}
}

// GetSharedLibPath returns the path to the shared library for the current platform.
//
// An explicit path wins, then the ONNXRUNTIME_SHARED_LIBRARY_PATH environment variable, then the
// first platform default that exists.
//
// Arguments:
//   - explicit: A configured library path, or empty.
//
// Returns:
//   - string: The path to the shared library.
//   - error: An error if the configured library does not exist or no default was found.
func GetSharedLibPath(explicit string) (string, error) {
	for _, p := range []string{explicit, os.Getenv(LibraryPathEnv)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("ONNX Runtime library not found at %s: %w", p, err)
		}
		return p, nil
	}

	for _, p := range defaultLibPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf(
		"unable to find a version of the onnxruntime library for %s/%s; set %s",
		runtime.GOOS, runtime.GOARCH, LibraryPathEnv,
	)
}

// initializeEnvironment loads the native library once per process.
func initializeEnvironment(libPath string, verbose bool) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}

	// Point ONNX Runtime to the exact shared library path (overrides default search).
	ort.SetSharedLibraryPath(libPath)
	if verbose {
		ort.SetEnvironmentLogLevel(ort.LoggingLevelVerbose)
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("error initializing ORT environment: %w", err)
	}
	return nil
}
