package paging

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/google/uuid"
)

const (
	MAX_PAGE_SIZE    = 4000 // 4KB
	PAGE_HEADER_SIZE = 48
)

// Page is one file in a table's doubly linked chain of row pages.
type Page struct {
	id uuid.UUID

	Prev uuid.UUID
	Next uuid.UUID

	buf []byte
}

func NewPage(prev_page_id, next_page_id uuid.UUID) *Page {
	return NewPageWithId(uuid.New(), prev_page_id, next_page_id)
}

func NewPageWithId(id, prev_page_id, next_page_id uuid.UUID) *Page {
	return &Page{id, prev_page_id, next_page_id, []byte{}}
}

func (p *Page) Id() uuid.UUID { return p.id }

var ERR_INVALID_PAGE_HEADER = errors.New("invalid page headers")

func LoadPageUUID(base string, id uuid.UUID) (*Page, error) { return LoadPage(base, id.String()) }

func LoadPage(base string, id string) (*Page, error) {
	data, err := os.ReadFile(path.Join(base, id))
	if err != nil {
		return nil, err
	}
	if len(data) < PAGE_HEADER_SIZE {
		return nil, fmt.Errorf("%w: page %s is %d bytes", ERR_INVALID_PAGE_HEADER, id, len(data))
	}

	page_id, err := uuid.FromBytes(data[0:16])
	if err != nil {
		return nil, fmt.Errorf("%w: page ID: %s", ERR_INVALID_PAGE_HEADER, err.Error())
	}
	prev_page_id, err := uuid.FromBytes(data[16:32])
	if err != nil {
		return nil, fmt.Errorf("%w: previous page ID: %s", ERR_INVALID_PAGE_HEADER, err.Error())
	}
	next_page_id, err := uuid.FromBytes(data[32:48])
	if err != nil {
		return nil, fmt.Errorf("%w: next page ID: %s", ERR_INVALID_PAGE_HEADER, err.Error())
	}

	if id != page_id.String() {
		return nil, fmt.Errorf("%w: page id mismatch %s != %s", ERR_INVALID_PAGE_HEADER, id, page_id.String())
	}

	return &Page{page_id, prev_page_id, next_page_id, data[PAGE_HEADER_SIZE:]}, nil
}

// The first 48 bytes hold the page links:
// 16 for the page's own id, 16 for the previous page and 16 for the next.
//
// The rest (at most MAX_PAGE_SIZE) is the page data.
func (p *Page) WriteToFile(base string) error {
	buf := make([]byte, 0, PAGE_HEADER_SIZE+len(p.buf))
	for _, id := range []uuid.UUID{p.id, p.Prev, p.Next} {
		b, err := id.MarshalBinary()
		if err != nil {
			return err
		}
		buf = append(buf, b...)
	}
	buf = append(buf, p.buf...)

	return os.WriteFile(path.Join(base, p.id.String()), buf, 0644)
}

var (
	ERR_PAGE_OVERFLOW = errors.New("page overflow")
	ERR_MAX_DATA_SIZE = errors.New("maximum data size exceeded")
)

const block_header_size = 2

// MaxBlockSize is the largest block a single empty page accepts.
const MaxBlockSize = MAX_PAGE_SIZE - block_header_size

func (p *Page) Push(data []byte) error {
	data_size := len(data)

	if data_size > MaxBlockSize {
		return ERR_MAX_DATA_SIZE
	}

	if data_size+block_header_size+len(p.buf) > MAX_PAGE_SIZE {
		return ERR_PAGE_OVERFLOW
	}

	// prefix each data block with its size
	header := make([]byte, block_header_size)
	binary.BigEndian.PutUint16(header, uint16(data_size))
	p.buf = append(p.buf, header...)
	p.buf = append(p.buf, data...)

	return nil
}

func (p *Page) NewReader() *PageReader {
	return &PageReader{bufio.NewReader(bytes.NewReader(p.buf)), nil, nil}
}

type PageReader struct {
	r   *bufio.Reader
	Buf []byte
	err error
}

// ReadNext loads the next block into Buf. It returns false at the end of the page
// or when the page is corrupt; Err tells the two apart.
func (r *PageReader) ReadNext() bool {
	header := make([]byte, block_header_size)
	if _, err := io.ReadFull(r.r, header); err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}
	size := binary.BigEndian.Uint16(header)

	buf := make([]byte, size)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return false
	}
	r.Buf = buf
	return true
}

func (r *PageReader) Err() error { return r.err }
