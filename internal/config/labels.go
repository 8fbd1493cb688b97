package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LabelsFile is the name of the display-name override file in the config dir.
const LabelsFile = "labels"

// LoadLabels reads the labels file at {dir}/labels and returns the display
// name overrides keyed by package id. Each line has the form
//
//	com.example.mail=Work Mail
//
// If the file does not exist, an empty map is returned without an error.
// Invalid or malformed lines are silently skipped.
func LoadLabels(dir string) (map[string]string, error) {
	labels := make(map[string]string)

	f, err := os.Open(filepath.Join(dir, LabelsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return labels, nil
		}
		return labels, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Names may contain "=", the package id may not.
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		pkg := strings.TrimSpace(line[:idx])
		name := strings.TrimSpace(line[idx+1:])

		if pkg == "" || name == "" || strings.ContainsAny(pkg, " \t") {
			continue
		}

		labels[pkg] = name
	}

	if err := scanner.Err(); err != nil {
		return labels, err
	}

	return labels, nil
}
