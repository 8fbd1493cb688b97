package device

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// pmListRE matches `pm list packages -f -U` lines:
//
//	package:/data/app/~~x==/com.foo-y==/base.apk=com.foo uid:10123
var pmListRE = regexp.MustCompile(`^package:(.*\.apk)=(\S+?)(?:\s+uid:(\d+))?$`)

// ListApplications enumerates every installed package in pm order.
// Updated system apps are reported by `pm list packages -s` as well, so they
// are flagged as system.
func (c *Client) ListApplications(ctx context.Context) ([]Application, error) {
	output, err := c.shell(ctx, "pm", "list", "packages", "-f", "-U")
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	systemOutput, err := c.shell(ctx, "pm", "list", "packages", "-s")
	if err != nil {
		return nil, fmt.Errorf("failed to list system packages: %w", err)
	}

	system := make(map[string]bool)
	for _, line := range lines(systemOutput) {
		if name, ok := strings.CutPrefix(line, "package:"); ok {
			system[name] = true
		}
	}

	apps := parsePackageList(output)
	for i := range apps {
		apps[i].IsSystem = system[apps[i].PackageID]
		apps[i].DisplayName = c.label(apps[i].PackageID)
	}

	c.log.WithField("count", len(apps)).WithField("system", len(system)).Debug("listed packages")
	return apps, nil
}

// parsePackageList parses `pm list packages -f -U` output. Duplicate package
// ids keep their first line.
func parsePackageList(output string) []Application {
	var apps []Application
	seen := make(map[string]bool)

	for _, line := range lines(output) {
		m := pmListRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if seen[m[2]] {
			continue
		}
		seen[m[2]] = true
		apps = append(apps, Application{
			PackageID: m[2],
			IconRef:   m[1],
		})
	}
	return apps
}

// ApplicationDetails resolves the display name and requested permissions
// of packageID from `dumpsys package`.
func (c *Client) ApplicationDetails(ctx context.Context, packageID string) (*Details, error) {
	output, err := c.shell(ctx, "dumpsys", "package", packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to dump package %s: %w", packageID, err)
	}

	if strings.Contains(output, "Unable to find package") || !strings.Contains(output, "Package ["+packageID+"]") {
		return nil, fmt.Errorf("%s: %w", packageID, ErrPackageNotFound)
	}

	return &Details{
		DisplayName: c.label(packageID),
		Permissions: parseRequestedPermissions(output),
	}, nil
}

// parseRequestedPermissions returns the entries of the first
// "requested permissions:" block in source order. The block ends at the
// first line indented no deeper than its header.
func parseRequestedPermissions(output string) []string {
	permissions := []string{}
	headerIndent := -1

	for _, raw := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(raw)
		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))

		if headerIndent < 0 {
			if trimmed == "requested permissions:" {
				headerIndent = indent
			}
			continue
		}

		if trimmed == "" || indent <= headerIndent {
			break
		}

		perm, _, _ := strings.Cut(trimmed, ":")
		permissions = append(permissions, strings.TrimSpace(perm))
	}
	return permissions
}

// label returns the configured display name for packageID, or one derived
// from its segments.
func (c *Client) label(packageID string) string {
	if name, ok := c.labels[packageID]; ok && name != "" {
		return name
	}
	return DeriveLabel(packageID)
}

var labelNoise = map[string]bool{
	"com": true, "net": true, "org": true, "io": true,
	"android": true, "google": true, "app": true, "apps": true,
}

// DeriveLabel builds a readable name from a package id, for example
// "com.example.photo_editor" becomes "Example Photo Editor".
func DeriveLabel(packageID string) string {
	parts := strings.Split(packageID, ".")

	var meaningful []string
	for _, p := range parts {
		if p != "" && !labelNoise[strings.ToLower(p)] {
			meaningful = append(meaningful, p)
		}
	}
	if len(meaningful) == 0 {
		meaningful = parts[len(parts)-1:]
	}

	var words []string
	for _, p := range meaningful {
		for _, w := range strings.FieldsFunc(p, func(r rune) bool { return r == '_' || r == '-' }) {
			words = append(words, strings.ToUpper(w[:1])+w[1:])
		}
	}
	if len(words) == 0 {
		return packageID
	}
	return strings.Join(words, " ")
}
