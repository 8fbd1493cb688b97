package device

import (
	"context"
	"fmt"
	"strings"
)

const flagActivityNewTask = "0x10000000"

// OpenUsageAccessSettings opens the usage-access settings screen on the device.
func (c *Client) OpenUsageAccessSettings(ctx context.Context) error {
	return c.startActivity(ctx, "android.settings.USAGE_ACCESS_SETTINGS", "")
}

// OpenAppSettings opens the application details screen of packageName.
func (c *Client) OpenAppSettings(ctx context.Context, packageName string) error {
	return c.startActivity(ctx, "android.settings.APPLICATION_DETAILS_SETTINGS", "package:"+packageName)
}

func (c *Client) startActivity(ctx context.Context, action, data string) error {
	args := []string{"am", "start", "-a", action}
	if data != "" {
		args = append(args, "-d", data)
	}
	args = append(args, "-f", flagActivityNewTask)

	output, err := c.shell(ctx, args...)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", action, err)
	}

	// am exits 0 even when the activity could not be started.
	for _, line := range lines(output) {
		if strings.HasPrefix(line, "Error") {
			return fmt.Errorf("failed to start %s: %s", action, line)
		}
	}

	c.log.WithField("action", action).Debug("started settings activity")
	return nil
}
