package device

import (
	"archive/zip"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// densityRank orders launcher icon resource qualifiers, best first.
var densityRank = map[string]int{
	"xxxhdpi": 6,
	"xxhdpi":  5,
	"xhdpi":   4,
	"hdpi":    3,
	"mdpi":    2,
	"ldpi":    1,
}

// ResolveIcon pulls the application's APK and returns its launcher icon as
// base64 encoded PNG without line breaks.
func (c *Client) ResolveIcon(ctx context.Context, app Application) (string, error) {
	remote := app.IconRef
	if remote == "" {
		var err error
		remote, err = c.apkPath(ctx, app.PackageID)
		if err != nil {
			return "", err
		}
	}

	dir, err := os.MkdirTemp(c.tempDir, "permaudit-apk-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	local := filepath.Join(dir, app.PackageID+".apk")
	if _, err := c.runner.Run(ctx, "pull", remote, local); err != nil {
		return "", fmt.Errorf("failed to pull APK for %s: %w", app.PackageID, err)
	}

	data, err := extractLauncherIcon(local)
	if err != nil {
		return "", fmt.Errorf("%s: %w", app.PackageID, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func (c *Client) apkPath(ctx context.Context, packageID string) (string, error) {
	output, err := c.shell(ctx, "pm", "path", packageID)
	if err != nil {
		return "", fmt.Errorf("failed to get APK path for %s: %w", packageID, err)
	}
	for _, line := range lines(output) {
		if p, ok := strings.CutPrefix(line, "package:"); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("unexpected output from pm path: %q", strings.TrimSpace(output))
}

// extractLauncherIcon reads the highest-density ic_launcher.png from an APK.
func extractLauncherIcon(apkPath string) ([]byte, error) {
	r, err := zip.OpenReader(apkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open APK: %w", err)
	}
	defer r.Close()

	var best *zip.File
	bestRank := -1
	for _, f := range r.File {
		if path.Base(f.Name) != "ic_launcher.png" {
			continue
		}
		if rank := iconDensity(f.Name); rank > bestRank {
			best, bestRank = f, rank
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no launcher icon in APK")
	}

	rc, err := best.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", best.Name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// iconDensity ranks a resource path such as res/mipmap-xxhdpi-v4/ic_launcher.png.
func iconDensity(name string) int {
	dir := path.Base(path.Dir(name))
	for _, q := range strings.Split(dir, "-")[1:] {
		if rank, ok := densityRank[q]; ok {
			return rank
		}
	}
	return 0
}
