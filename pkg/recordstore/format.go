package recordstore

import (
	"encoding/binary"
	"hash/crc32"

	"github.com/google/uuid"

	"github.com/calvinalkan/graphrec/pkg/record"
)

// GRS1 file format constants.
const (
	grs1Magic   = "GRS1"
	grs1Version = 1

	// Fixed header size in bytes. Slot 0 starts right after it.
	headerSize = 64

	// Every slot ends with a CRC32-C of its payload.
	checksumSize = 4
)

// Header field offsets.
const (
	offMagic     = 0x00
	offVersion   = 0x04
	offKind      = 0x08
	offSlotSize  = 0x0C
	offCapacity  = 0x10
	offStoreID   = 0x18
	offHeaderCRC = 0x3C
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

type fileHeader struct {
	version  uint32
	kind     record.Kind
	slotSize uint32
	capacity uint64
	storeID  uuid.UUID
}

func encodeHeader(h fileHeader) []byte {
	buf := make([]byte, headerSize)
	copy(buf[offMagic:], grs1Magic)
	binary.LittleEndian.PutUint32(buf[offVersion:], h.version)
	buf[offKind] = byte(h.kind)
	binary.LittleEndian.PutUint32(buf[offSlotSize:], h.slotSize)
	binary.LittleEndian.PutUint64(buf[offCapacity:], h.capacity)
	copy(buf[offStoreID:], h.storeID[:])
	binary.LittleEndian.PutUint32(buf[offHeaderCRC:], crc32.Checksum(buf[:offHeaderCRC], crcTable))

	return buf
}

// decodeHeader parses buf. ok is false if the magic or checksum is wrong.
func decodeHeader(buf []byte) (fileHeader, bool) {
	if len(buf) != headerSize || string(buf[offMagic:offMagic+4]) != grs1Magic {
		return fileHeader{}, false
	}

	want := binary.LittleEndian.Uint32(buf[offHeaderCRC:])
	if crc32.Checksum(buf[:offHeaderCRC], crcTable) != want {
		return fileHeader{}, false
	}

	h := fileHeader{
		version:  binary.LittleEndian.Uint32(buf[offVersion:]),
		kind:     record.Kind(buf[offKind]),
		slotSize: binary.LittleEndian.Uint32(buf[offSlotSize:]),
		capacity: binary.LittleEndian.Uint64(buf[offCapacity:]),
	}
	copy(h.storeID[:], buf[offStoreID:offStoreID+len(h.storeID)])

	return h, true
}

// sealSlot writes the checksum of payload into the trailing bytes of slot.
func sealSlot(slot []byte) {
	payload := len(slot) - checksumSize
	binary.LittleEndian.PutUint32(slot[payload:], crc32.Checksum(slot[:payload], crcTable))
}

// slotIntact reports whether the trailing checksum matches the payload.
func slotIntact(slot []byte) bool {
	payload := len(slot) - checksumSize

	return binary.LittleEndian.Uint32(slot[payload:]) == crc32.Checksum(slot[:payload], crcTable)
}

func isZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}

	return true
}
