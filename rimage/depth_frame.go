package rimage

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrInvalidFrame is returned when a frame's buffers do not describe a usable grid.
var ErrInvalidFrame = errors.New("invalid depth frame")

// frameMagic starts every serialized frame.
var frameMagic = [8]byte{'D', 'N', 'F', 'R', 'A', 'M', 'E', '1'}

const maxFrameDim = 100000

// DepthFrame is one sensor update: a depth map plus a parallel confidence grid (0-255).
type DepthFrame struct {
	Depth      *DepthMap
	Confidence []uint8
}

// NewDepthFrame builds a frame from row-major depth (mm) and confidence buffers.
func NewDepthFrame(width, height int, depth []int16, confidence []uint8) (*DepthFrame, error) {
	dm, err := NewDepthMapFromData(width, height, depth)
	if err != nil {
		return nil, err
	}
	if len(confidence) != width*height {
		return nil, errors.Wrapf(ErrInvalidFrame, "got %d confidence samples for %dx%d", len(confidence), width, height)
	}
	conf := make([]uint8, len(confidence))
	copy(conf, confidence)
	return &DepthFrame{Depth: dm, Confidence: conf}, nil
}

// NewFullConfidenceFrame wraps a depth map with every confidence sample at 255.
func NewFullConfidenceFrame(dm *DepthMap) *DepthFrame {
	conf := make([]uint8, dm.width*dm.height)
	for i := range conf {
		conf[i] = 255
	}
	return &DepthFrame{Depth: dm, Confidence: conf}
}

// Width returns the frame width, or 0 for a nil frame.
func (f *DepthFrame) Width() int {
	if f == nil || f.Depth == nil {
		return 0
	}
	return f.Depth.width
}

// Height returns the frame height, or 0 for a nil frame.
func (f *DepthFrame) Height() int {
	if f == nil || f.Depth == nil {
		return 0
	}
	return f.Depth.height
}

// CheckValid returns an error wrapping ErrInvalidFrame if the frame cannot be processed.
func (f *DepthFrame) CheckValid() error {
	if f == nil || f.Depth == nil {
		return errors.Wrap(ErrInvalidFrame, "missing depth buffer")
	}
	if f.Confidence == nil {
		return errors.Wrap(ErrInvalidFrame, "missing confidence buffer")
	}
	if !f.Depth.HasData() {
		return errors.Wrapf(ErrInvalidFrame, "bad dimensions %dx%d", f.Depth.width, f.Depth.height)
	}
	if len(f.Confidence) != len(f.Depth.data) {
		return errors.Wrapf(ErrInvalidFrame, "confidence has %d samples, depth has %d", len(f.Confidence), len(f.Depth.data))
	}
	return nil
}

// ConfidenceAt returns the confidence at (x, y).
func (f *DepthFrame) ConfidenceAt(x, y int) uint8 {
	return f.Confidence[f.Depth.kxy(x, y)]
}

// ParseDepthFrame reads a frame file written by WriteToFile. Files ending in ".gz" are gunzipped.
func ParseDepthFrame(fn string) (*DepthFrame, error) {
	//nolint:gosec
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if filepath.Ext(fn) == ".gz" {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot gunzip %s", fn)
		}
		defer gr.Close()
		r = gr
	}

	frame, err := ReadDepthFrame(bufio.NewReader(r))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read depth frame %s", fn)
	}
	return frame, nil
}

// ReadDepthFrame decodes a frame: magic, uint32 width, uint32 height, int16 depths, confidence bytes.
func ReadDepthFrame(r *bufio.Reader) (*DepthFrame, error) {
	var magic [8]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "cannot read frame header")
	}
	if magic != frameMagic {
		return nil, errors.Errorf("bad frame magic %q", magic[:])
	}

	var dims [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, errors.Wrap(err, "cannot read frame dimensions")
	}
	width, height := int(dims[0]), int(dims[1])
	if width <= 0 || width >= maxFrameDim || height <= 0 || height >= maxFrameDim {
		return nil, errors.Wrapf(ErrInvalidFrame, "bad width or height for depth frame %v %v", width, height)
	}

	depth := make([]int16, width*height)
	if err := binary.Read(r, binary.LittleEndian, depth); err != nil {
		return nil, errors.Wrap(err, "cannot read depth samples")
	}
	confidence := make([]uint8, width*height)
	if _, err := io.ReadFull(r, confidence); err != nil {
		return nil, errors.Wrap(err, "cannot read confidence samples")
	}

	return NewDepthFrame(width, height, depth, confidence)
}

// WriteToFile writes the frame to fn, gzipping when the name ends in ".gz".
func (f *DepthFrame) WriteToFile(fn string) (err error) {
	//nolint:gosec
	file, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	var out io.Writer = file
	var gout *gzip.Writer
	if filepath.Ext(fn) == ".gz" {
		gout = gzip.NewWriter(file)
		out = gout
	}

	if err := f.Encode(out); err != nil {
		return err
	}
	if gout != nil {
		if err := gout.Close(); err != nil {
			return err
		}
	}
	return file.Sync()
}

// Encode writes the frame to out in the format read by ReadDepthFrame.
func (f *DepthFrame) Encode(out io.Writer) error {
	if err := f.CheckValid(); err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	if _, err := w.Write(frameMagic[:]); err != nil {
		return err
	}
	dims := [2]uint32{uint32(f.Depth.width), uint32(f.Depth.height)}
	if err := binary.Write(w, binary.LittleEndian, dims); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, f.Depth.data); err != nil {
		return err
	}
	if _, err := w.Write(f.Confidence); err != nil {
		return err
	}
	return w.Flush()
}
