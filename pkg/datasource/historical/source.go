package historical

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"unsafe"

	"golang.org/x/exp/mmap"
)

var ErrEof = errors.New("EOF")

// Source reads fixed-size records of T straight out of a memory mapped file.
type Source[T any] struct {
	dataSourceName string
	reader         *mmap.ReaderAt
	bufferPool     *sync.Pool
}

func NewSource[T any](dataSourceName string) *Source[T] {
	return &Source[T]{
		dataSourceName: dataSourceName,
		bufferPool: &sync.Pool{
			New: func() any {
				buffer := make([]byte, recordSize[T]())
				return &buffer
			},
		},
	}
}

func recordSize[T any]() int {
	var entry T
	return int(unsafe.Sizeof(entry))
}

func (s *Source[T]) Open() error {
	reader, err := mmap.Open(s.dataSourceName)
	if err != nil {
		return fmt.Errorf("unable to open data source %q: %w", s.dataSourceName, err)
	}
	s.reader = reader
	return nil
}

func (s *Source[T]) Close() error {
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}

func (s *Source[T]) Read(index int64, data *T) error {
	buffer := s.bufferPool.Get().(*[]byte)
	defer s.bufferPool.Put(buffer)

	offset := index * int64(len(*buffer))

	n, err := s.reader.ReadAt(*buffer, offset)
	if err != nil && err != io.EOF {
		return fmt.Errorf("unable to read record %d: %w", index, err)
	}
	if n < len(*buffer) {
		return ErrEof
	}

	*data = *(*T)(unsafe.Pointer(&(*buffer)[0])) // #nosec G103
	return nil
}

func (s *Source[T]) EntryCount() (int64, error) {
	size := int64(recordSize[T]())
	if size == 0 {
		return 0, fmt.Errorf("size of T is zero")
	}

	total := int64(s.reader.Len())
	if total%size != 0 {
		return 0, fmt.Errorf("data source %q size %d is not a multiple of record size %d", s.dataSourceName, total, size)
	}
	return total / size, nil
}

// Search returns the index of the first record for which before reports false,
// assuming the records are sorted so that before holds for a prefix.
func (s *Source[T]) Search(before func(*T) bool) (int64, error) {
	count, err := s.EntryCount()
	if err != nil {
		return 0, err
	}

	var entry T
	low, high := int64(0), count-1
	for low <= high {
		mid := (low + high) / 2
		if err := s.Read(mid, &entry); err != nil {
			return 0, fmt.Errorf("error reading entry at index %d: %w", mid, err)
		}
		if before(&entry) {
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return low, nil
}
