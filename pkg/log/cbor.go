package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// FileExtension is the conventional extension for event files.
//
// A .tlog file is a plain concatenation of CBOR-encoded Events with no
// header or framing. Each record is a definite-length map keyed by the
// small integers declared on Event and TransitionEvent, so a reader can
// resume at any record boundary and an event that gains a field stays
// readable by older tools.
const FileExtension = ".tlog"

// maxEventNesting bounds decoder recursion. An Event is at most two maps
// deep (Event, then its Transition or Error payload).
const maxEventNesting = 4

// Records are written with canonical key order and timestamps as RFC 3339
// strings with nanoseconds, so equal events encode to equal bytes.
var eventEncMode = mustEncMode(cbor.EncOptions{
	Sort:          cbor.SortCanonical,
	IndefLength:   cbor.IndefLengthForbidden,
	NilContainers: cbor.NilContainerAsNull,
	Time:          cbor.TimeRFC3339Nano,
})

// Readers accept only what FileLogger writes. A duplicate key or an
// indefinite-length item means the record was not produced by this
// package and is rejected instead of being half-decoded. Unknown keys
// are skipped.
var eventDecMode = mustDecMode(cbor.DecOptions{
	DupMapKey:       cbor.DupMapKeyEnforcedAPF,
	IndefLength:     cbor.IndefLengthForbidden,
	MaxNestedLevels: maxEventNesting,
})

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: invalid event encoder options: %v", err))
	}
	return em
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	dm, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: invalid event decoder options: %v", err))
	}
	return dm
}

// EncodeEvent encodes a single .tlog record.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEncMode.Marshal(event)
}

// DecodeEvent decodes a single .tlog record.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// NewEncoder returns an encoder that appends records to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEncMode.NewEncoder(w)
}

// NewDecoder returns a decoder that reads consecutive records from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDecMode.NewDecoder(r)
}
