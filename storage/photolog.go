// Package storage implements the append-only photo log and the archive
// component that writes to it. The log is a sequence of records, each a
// length-prefixed label followed by a fixed binary body, little-endian
// throughout, no header, no checksum. Recovery is a full scan from the
// start; a short trailing read is treated as a clean end of file.
package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/c360/groundctl/errors"
)

// Record is one persisted photo capture.
type Record struct {
	Index int32
	Lat   float64
	Lon   float64
}

// Label returns the record's stored label.
func (r Record) Label() string {
	return fmt.Sprintf("photo%d", r.Index)
}

// recordBodySize is int32 index + float64 lat + float64 lon.
const recordBodySize = 4 + 8 + 8

// PhotoLog is the file-backed append-only log. The archive component is its
// single writer; a mutex guards the counter so NextIndex can be read from
// other goroutines.
type PhotoLog struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	nextIndex int32
	closed    bool
}

// Open opens (or creates) the log at path and recovers the next sequence
// index by scanning every record. An absent or empty file starts at index 0.
func Open(path string) (*PhotoLog, error) {
	next, err := recoverNextIndex(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "PhotoLog", "Open", "index recovery")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.WrapFatal(err, "PhotoLog", "Open", "open for append")
	}

	return &PhotoLog{path: path, file: file, nextIndex: next}, nil
}

// recoverNextIndex scans the whole file: last successfully parsed index plus
// one. Truncated trailing records end the scan cleanly.
func recoverNextIndex(path string) (int32, error) {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var next int32
	for {
		rec, ok, err := readRecord(file)
		if err != nil {
			return 0, err
		}
		if !ok {
			break
		}
		next = rec.Index + 1
	}
	return next, nil
}

// readRecord reads one record. ok=false means end of data, including a
// truncated trailing record.
func readRecord(r io.Reader) (Record, bool, error) {
	var labelLen uint32
	if err := binary.Read(r, binary.LittleEndian, &labelLen); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	label := make([]byte, labelLen)
	if _, err := io.ReadFull(r, label); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	var body struct {
		Index int32
		Lat   float64
		Lon   float64
	}
	if err := binary.Read(r, binary.LittleEndian, &body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}

	return Record{Index: body.Index, Lat: body.Lat, Lon: body.Lon}, true, nil
}

// NextIndex returns the sequence index the next Append will use.
func (l *PhotoLog) NextIndex() int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextIndex
}

// Append writes one record with the next sequence index and returns the
// index used. Durability is best effort: the write goes straight to the
// appended file with no fsync barrier.
func (l *PhotoLog) Append(lat, lon float64) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, errors.ErrLogClosed
	}

	index := l.nextIndex
	label := []byte(fmt.Sprintf("photo%d", index))

	buf := make([]byte, 0, 4+len(label)+recordBodySize)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(label)))
	buf = append(buf, label...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(index))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(lat))
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(lon))

	if _, err := l.file.Write(buf); err != nil {
		return 0, errors.WrapTransient(err, "PhotoLog", "Append", "file write")
	}

	l.nextIndex++
	return index, nil
}

// Scan re-reads the whole log from disk. Used for inspection and tests; the
// live counter is maintained in memory.
func (l *PhotoLog) Scan() ([]Record, error) {
	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapTransient(err, "PhotoLog", "Scan", "open for read")
	}
	defer file.Close()

	var records []Record
	for {
		rec, ok, err := readRecord(file)
		if err != nil {
			return nil, errors.WrapTransient(err, "PhotoLog", "Scan", "record read")
		}
		if !ok {
			return records, nil
		}
		records = append(records, rec)
	}
}

// Close closes the underlying file. Further Appends fail with ErrLogClosed.
func (l *PhotoLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}
