package bind_group_provider

import (
	"errors"
	"fmt"
)

// writeAlignment is the byte alignment wgpu requires of both the offset and the size of a queue write.
const writeAlignment = 4

// ErrUnalignedWrite is returned for a BufferWrite whose offset or length breaks the queue alignment.
var ErrUnalignedWrite = errors.New("bind_group_provider: unaligned buffer write")

// BufferWrite is one queued upload into the buffer at Binding on Provider, such as a stage's
// per-frame uniform block.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Validate checks the write against the queue alignment rules.
//
// Returns:
//   - error: ErrUnalignedWrite if the offset or data length is not a multiple of 4, or an error if the
//     provider is missing
func (w BufferWrite) Validate() error {
	if w.Provider == nil {
		return fmt.Errorf("bind_group_provider: buffer write to binding %d has no provider", w.Binding)
	}
	if w.Offset%writeAlignment != 0 || len(w.Data)%writeAlignment != 0 {
		return fmt.Errorf("%w: binding %d offset %d length %d", ErrUnalignedWrite, w.Binding, w.Offset, len(w.Data))
	}
	return nil
}
