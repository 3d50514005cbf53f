package util

import (
	"fmt"
	"io"

	"github.com/ppiankov/originality/internal/model"
)

// ReadLimited reads r to EOF and fails with model.ErrBodyTooLarge when more than
// limit bytes are available. A non-positive limit reads everything.
func ReadLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", model.ErrBodyTooLarge, limit)
	}
	return data, nil
}
