package journal

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

type fieldNumber = protowire.Number

const maxRecordSize = 64 << 20

func appendRecord(b []byte, num fieldNumber, payload []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, payload)
}

type Episode struct {
	Header  Header
	Entries []Entry
}

type Reader struct {
	r       *bufio.Reader
	pending *Header
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

func (r *Reader) next() (fieldNumber, []byte, error) {
	tag, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, nil, err
	}
	num, typ := protowire.DecodeTag(tag)
	if typ != protowire.BytesType || (num != fieldHeader && num != fieldEntry) {
		return 0, nil, fmt.Errorf("%w: unexpected record %d/%d", ErrCorrupt, num, typ)
	}

	size, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: record length: %v", ErrCorrupt, err)
	}
	if size > maxRecordSize {
		return 0, nil, fmt.Errorf("%w: record of %d bytes", ErrCorrupt, size)
	}

	payload := make([]byte, size)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return 0, nil, fmt.Errorf("%w: truncated record: %v", ErrCorrupt, err)
	}
	return num, payload, nil
}

// ReadEpisode returns the next episode with all of its entries, or io.EOF once
// the stream is exhausted.
func (r *Reader) ReadEpisode() (Episode, error) {
	var episode Episode

	if r.pending != nil {
		episode.Header = *r.pending
		r.pending = nil
	} else {
		num, payload, err := r.next()
		if err != nil {
			return Episode{}, err
		}
		if num != fieldHeader {
			return Episode{}, fmt.Errorf("%w: entry before header", ErrCorrupt)
		}
		if episode.Header, err = decodeHeader(payload); err != nil {
			return Episode{}, err
		}
	}

	for {
		num, payload, err := r.next()
		if errors.Is(err, io.EOF) {
			return episode, nil
		}
		if err != nil {
			return Episode{}, err
		}

		if num == fieldHeader {
			header, err := decodeHeader(payload)
			if err != nil {
				return Episode{}, err
			}
			r.pending = &header
			return episode, nil
		}

		entry, err := decodeEntry(payload)
		if err != nil {
			return Episode{}, err
		}
		episode.Entries = append(episode.Entries, entry)
	}
}

// ReadAll drains the stream.
func (r *Reader) ReadAll() ([]Episode, error) {
	var episodes []Episode
	for {
		episode, err := r.ReadEpisode()
		if errors.Is(err, io.EOF) {
			return episodes, nil
		}
		if err != nil {
			return episodes, err
		}
		episodes = append(episodes, episode)
	}
}
