//go:build !linux

package region

import "errors"

// ErrMappingUnsupported is returned on platforms without shared-segment
// support. Loopback runs over a HeapRegion still work everywhere.
var ErrMappingUnsupported = errors.New("mapped regions are only supported on linux")

// A MappedRegion is not available on this platform.
type MappedRegion struct {
	bytesRegion
}

// CreateMapped is not available on this platform.
func CreateMapped(name string, size int) (*MappedRegion, error) {
	return nil, ErrMappingUnsupported
}

// OpenMapped is not available on this platform.
func OpenMapped(name string) (*MappedRegion, error) {
	return nil, ErrMappingUnsupported
}

// Path returns the segment file path.
func (r *MappedRegion) Path() string {
	return ""
}

// Close releases the region.
func (r *MappedRegion) Close() error {
	return nil
}
