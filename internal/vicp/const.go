package vicp

// Operation flags carried in the first header byte.
const (
	OpData    byte = 0x80 // frame payload is instrument data
	OpRemote  byte = 0x40 // keep instrument in remote mode
	OpLockout byte = 0x20 // lock out the front panel
	OpClear   byte = 0x10 // device clear
	OpSRQ     byte = 0x08 // service request frame
	OpReqSend byte = 0x04 // request to send
	OpEOI     byte = 0x01 // last frame of a message
)

// Version is the only protocol version in the wild.
const Version byte = 0x01

// HeaderSize is the fixed frame header size in bytes:
// [op:1][version:1][seq:1][reserved:1][payloadLength:4 big-endian].
const HeaderSize = 8

// DefaultPort is the well-known VICP TCP port on LeCroy scopes.
const DefaultPort = 1861
