package winproc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Staff record sizes
const (
	// RecordNameSize is the fixed width of the name field in bytes
	RecordNameSize = 15

	// RecordSize is the exact size of an encoded staff record:
	// 2 bytes id + 8 bytes hours + 15 bytes name
	RecordSize = 2 + 8 + RecordNameSize
)

// Staff record layout offsets
const (
	offsetRecordID    = 0  // bytes 0-1: id
	offsetRecordHours = 2  // bytes 2-9: hours (IEEE 754 bits)
	offsetRecordName  = 10 // bytes 10-24: name, NUL padded
)

// StaffRecord is a fixed-size demonstration record that round-trips through
// the raw File wrapper. It carries no lifecycle or concurrency concerns;
// names longer than RecordNameSize bytes are truncated.
type StaffRecord struct {
	// ID is the record identifier
	ID uint16
	// Hours is the accumulated hours value
	Hours float64

	name [RecordNameSize]byte
}

// NewStaffRecord builds a record, truncating name to RecordNameSize bytes
func NewStaffRecord(id uint16, name string, hours float64) StaffRecord {
	r := StaffRecord{ID: id, Hours: hours}
	r.SetName(name)
	return r
}

// Name returns the name field with NUL padding trimmed
func (r *StaffRecord) Name() string {
	if i := bytes.IndexByte(r.name[:], 0); i >= 0 {
		return string(r.name[:i])
	}
	return string(r.name[:])
}

// SetName replaces the name field, truncating to RecordNameSize bytes
func (r *StaffRecord) SetName(name string) {
	r.name = [RecordNameSize]byte{}
	copy(r.name[:], name)
}

// Encode serializes the record into its fixed little-endian layout
func (r *StaffRecord) Encode() [RecordSize]byte {
	var out [RecordSize]byte
	binary.LittleEndian.PutUint16(out[offsetRecordID:offsetRecordHours], r.ID)
	binary.LittleEndian.PutUint64(out[offsetRecordHours:offsetRecordName], math.Float64bits(r.Hours))
	copy(out[offsetRecordName:], r.name[:])
	return out
}

// DecodeStaffRecord decodes a RecordSize-byte staff record
func DecodeStaffRecord(data []byte) (StaffRecord, error) {
	if len(data) != RecordSize {
		return StaffRecord{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrDecode, RecordSize, len(data))
	}

	var r StaffRecord
	r.ID = binary.LittleEndian.Uint16(data[offsetRecordID:offsetRecordHours])
	r.Hours = math.Float64frombits(binary.LittleEndian.Uint64(data[offsetRecordHours:offsetRecordName]))
	copy(r.name[:], data[offsetRecordName:])
	return r, nil
}
