package ingest

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// DefaultReadCap bounds how many trailing bytes of a file are read per import.
const DefaultReadCap int64 = 2000 * 4096

// readTail returns the lines contained in the last readCap bytes of path.
// When the file is larger than readCap the first line of the window is
// discarded because it may start mid-line.
func readTail(path string, readCap int64) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size := info.Size()
	truncated := readCap > 0 && size > readCap
	if truncated {
		if _, err := f.Seek(size-readCap, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek: %w", err)
		}
		size = readCap
	}

	buf := make([]byte, size)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read: %w", err)
	}
	buf = buf[:n]

	sc := bufio.NewScanner(bytes.NewReader(buf))
	sc.Buffer(make([]byte, 0, 64*1024), len(buf)+1)

	var lines []string
	if truncated {
		sc.Scan() // partial first line
	}
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return lines, nil
}
