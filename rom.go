package chip8

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrRomNotFound   = errors.New("file does not exist")
	ErrRomNotRegular = errors.New("not a regular file")
	ErrRomTooBig     = errors.New("file is bigger than the maximum accepted size")
)

// RomError describes why a ROM file could not be loaded
type RomError struct {
	Path string
	Err  error
}

func (err *RomError) Error() string {
	return fmt.Sprintf("loading rom '%s': %v", err.Path, err.Err)
}

func (err *RomError) Unwrap() error {
	return err.Err
}

// LoadRomFile reads a ROM from disk. ROMs are flat binaries with no header.
func LoadRomFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &RomError{Path: path, Err: ErrRomNotFound}
	} else if err != nil {
		return nil, &RomError{Path: path, Err: err}
	}

	if !info.Mode().IsRegular() {
		return nil, &RomError{Path: path, Err: ErrRomNotRegular}
	}

	if info.Size() >= MaxRomSize {
		return nil, &RomError{Path: path, Err: fmt.Errorf("%w: %d bytes, the limit is %d", ErrRomTooBig, info.Size(), MaxRomSize-1)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &RomError{Path: path, Err: err}
	}
	defer f.Close()

	program, err := io.ReadAll(io.LimitReader(f, MaxRomSize))
	if err != nil {
		return nil, &RomError{Path: path, Err: err}
	}
	if len(program) >= MaxRomSize {
		return nil, &RomError{Path: path, Err: ErrRomTooBig}
	}

	return program, nil
}
