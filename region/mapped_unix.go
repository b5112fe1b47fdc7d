//go:build linux

package region

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"
)

// Segment file layout: a 64-byte descriptor followed by the shared region.
// The descriptor never participates in the exchange; it only lets the opening
// side reject a file that was not created by a matching build.
const (
	segmentMagic   = "COHMARK\x00"
	segmentVersion = uint32(1)
	descriptorSize = 64
)

type segmentDescriptor struct {
	magic      [8]byte
	version    uint32
	_          uint32
	regionSize uint64
	creatorPID uint32
	openerPID  uint32
	_          [40]byte
}

// A MappedRegion is a Region backed by a file mapping, shared between the
// sender process and the receiver process.
type MappedRegion struct {
	bytesRegion
	file    *os.File
	mapping []byte
	path    string
	created bool
}

// CreateMapped creates and maps a new shared segment of the given region
// size. The file lives under /dev/shm when available, falling back to the
// temporary directory.
func CreateMapped(name string, size int) (*MappedRegion, error) {
	if size <= 0 || size%4 != 0 {
		return nil, fmt.Errorf("invalid region size %d", size)
	}

	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create segment file %s: %w", path, err)
	}

	cleanup := func() {
		file.Close()
		os.Remove(path)
	}

	total := descriptorSize + size
	if err := file.Truncate(int64(total)); err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to resize segment file: %w", err)
	}

	mem, err := mmapFile(file, total)
	if err != nil {
		cleanup()
		return nil, err
	}

	desc := (*segmentDescriptor)(unsafe.Pointer(&mem[0]))
	copy(desc.magic[:], segmentMagic)
	desc.version = segmentVersion
	desc.regionSize = uint64(size)
	desc.creatorPID = uint32(os.Getpid())

	return &MappedRegion{
		bytesRegion: bytesRegion{mem: mem[descriptorSize:]},
		file:        file,
		mapping:     mem,
		path:        path,
		created:     true,
	}, nil
}

// OpenMapped maps an existing shared segment created by the peer.
func OpenMapped(name string) (*MappedRegion, error) {
	path := segmentPath(name)

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open segment file %s: %w", path, err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat segment file: %w", err)
	}

	total := int(info.Size())
	if total < descriptorSize {
		file.Close()
		return nil, fmt.Errorf("segment file too small: %d bytes", total)
	}

	mem, err := mmapFile(file, total)
	if err != nil {
		file.Close()
		return nil, err
	}

	desc := (*segmentDescriptor)(unsafe.Pointer(&mem[0]))

	if string(desc.magic[:]) != segmentMagic {
		syscall.Munmap(mem)
		file.Close()
		return nil, fmt.Errorf("segment %s has invalid magic bytes", path)
	}
	if desc.version != segmentVersion {
		syscall.Munmap(mem)
		file.Close()
		return nil, fmt.Errorf("segment %s has unsupported version %d, expected %d",
			path, desc.version, segmentVersion)
	}
	if int(desc.regionSize) != total-descriptorSize {
		syscall.Munmap(mem)
		file.Close()
		return nil, fmt.Errorf("segment %s region size mismatch: descriptor %d, file %d",
			path, desc.regionSize, total-descriptorSize)
	}

	desc.openerPID = uint32(os.Getpid())

	return &MappedRegion{
		bytesRegion: bytesRegion{mem: mem[descriptorSize:]},
		file:        file,
		mapping:     mem,
		path:        path,
	}, nil
}

// Path returns the segment file path.
func (r *MappedRegion) Path() string {
	return r.path
}

// Close unmaps the region and closes the backing file. The side that created
// the segment also removes the file.
func (r *MappedRegion) Close() error {
	var firstErr error

	if r.mapping != nil {
		if err := syscall.Munmap(r.mapping); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("munmap failed: %w", err)
		}
		r.mapping = nil
		r.mem = nil
	}

	if r.file != nil {
		if err := r.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		r.file = nil
	}

	if r.created {
		if err := os.Remove(r.path); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func segmentPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}

	if info, err := os.Stat("/dev/shm"); err == nil && info.IsDir() {
		return filepath.Join("/dev/shm", "cohmark_"+name)
	}

	return filepath.Join(os.TempDir(), "cohmark_"+name)
}

func mmapFile(file *os.File, size int) ([]byte, error) {
	mem, err := syscall.Mmap(int(file.Fd()), 0, size,
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap failed: %w", err)
	}

	return mem, nil
}
