// Package comm defines the frame level transport used by the
// Scratch remote sensor client.
package comm

// PacketReader reads whole frames in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes whole frames in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes frames in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}
