// Package gate decides whether today's report run may proceed. An upstream
// flow drops a marker file next to the report once it is complete; the run
// proceeds only while that marker is present.
package gate

import (
	"context"
	"fmt"
)

// DefaultMarker is the marker file name the upstream flow writes.
const DefaultMarker = "runETL.txt"

// Lister lists the file names directly inside a folder.
type Lister interface {
	List(ctx context.Context, folder string) ([]string, error)
}

// CheckAndProceed reports whether markerName is present in folder. Names
// are compared exactly. A listing failure is returned as an error and never
// as permission to proceed.
func CheckAndProceed(ctx context.Context, l Lister, folder, markerName string) (bool, error) {
	if markerName == "" {
		markerName = DefaultMarker
	}
	names, err := l.List(ctx, folder)
	if err != nil {
		return false, fmt.Errorf("gate: list %s: %w", folder, err)
	}
	for _, n := range names {
		if n == markerName {
			return true, nil
		}
	}
	return false, nil
}
