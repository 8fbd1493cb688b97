package device

import (
	"context"
	"fmt"
	"strings"
)

// fakeRunner returns canned output keyed by the space-joined arguments.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string

	// onRun, when set, runs for every call, for example to write pulled files.
	onRun func(args []string) error
}

func (f *fakeRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	key := strings.Join(args, " ")
	f.calls = append(f.calls, key)

	if f.onRun != nil {
		if err := f.onRun(args); err != nil {
			return nil, err
		}
	}
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if out, ok := f.outputs[key]; ok {
		return []byte(out), nil
	}
	if f.onRun != nil {
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected adb call: %s", key)
}
