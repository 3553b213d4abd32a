package audio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
)

const wavHeaderSize = 44

// wavWriter streams 16-bit PCM samples into a RIFF/WAVE file. The header is
// written up front with zero lengths and patched on Close, so a crash leaves
// a recognisably truncated file rather than a silently corrupt one.
type wavWriter struct {
	f         *os.File
	bw        *bufio.Writer
	dataBytes uint32
}

func newWAVWriter(path string, sampleRate, channels int) (*wavWriter, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid wav format: rate=%d channels=%d", sampleRate, channels)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav file: %w", err)
	}

	w := &wavWriter{f: f, bw: bufio.NewWriter(f)}
	if err := w.writeHeader(sampleRate, channels); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *wavWriter) writeHeader(sampleRate, channels int) error {
	byteRate := sampleRate * channels * 2
	blockAlign := channels * 2

	var hdr [wavHeaderSize]byte
	copy(hdr[0:], "RIFF")
	// RIFF size and data size are patched on Close.
	copy(hdr[8:], "WAVE")
	copy(hdr[12:], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:], 16)
	binary.LittleEndian.PutUint16(hdr[20:], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:], 16) // bits per sample
	copy(hdr[36:], "data")

	if _, err := w.bw.Write(hdr[:]); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

// writeSample appends one 16-bit sample.
func (w *wavWriter) writeSample(s int16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(s))
	if _, err := w.bw.Write(b[:]); err != nil {
		return err
	}
	w.dataBytes += 2
	return nil
}

// Close flushes buffered samples, patches the chunk sizes and closes the
// file, leaving a durable WAV on disk.
func (w *wavWriter) Close() error {
	if err := w.bw.Flush(); err != nil {
		w.f.Close()
		return fmt.Errorf("flush wav data: %w", err)
	}

	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], 36+w.dataBytes)
	if _, err := w.f.WriteAt(b[:], 4); err != nil {
		w.f.Close()
		return fmt.Errorf("patch riff size: %w", err)
	}
	binary.LittleEndian.PutUint32(b[:], w.dataBytes)
	if _, err := w.f.WriteAt(b[:], 40); err != nil {
		w.f.Close()
		return fmt.Errorf("patch data size: %w", err)
	}

	if err := w.f.Sync(); err != nil {
		w.f.Close()
		return fmt.Errorf("sync wav file: %w", err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close wav file: %w", err)
	}
	return nil
}

// Name returns the path of the underlying file.
func (w *wavWriter) Name() string {
	return w.f.Name()
}
