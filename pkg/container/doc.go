// Package container implements the K2SH file format.
//
// A K2SH file is a single self-describing unit: a magic header, a versioned
// metadata block, one payload block, and a trailing integrity checksum.
//
// # Wire Format
//
// All integers are little-endian (see the codec package):
//
//	[magic "K2SH" 4B]
//	[version u32]
//	[metadata_count u32]
//	  repeated metadata_count times:
//	    [key_len u32][key][value_type u8][value_len u32][value]
//	[payload_kind u32]
//	[payload_len u32]
//	[payload]
//	[crc32 u32]
//
// The checksum is CRC-32 (IEEE) over every byte preceding it. Metadata keys
// are unique UTF-8 strings; values are tagged as text or binary. Unknown
// bytes after the checksum are an error (ErrTrailingData) rather than being
// ignored, which catches truncation and concatenation bugs early.
//
// # Determinism
//
// Encode emits byte-identical output for equal containers. Nothing is
// timestamped unless the caller put a timestamp into the metadata block.
//
// # Reading
//
// Decode fully materializes a Container and verifies the checksum.
// ReadSummary answers "what is this file" from the header and metadata
// alone, skipping payload reconstruction and the checksum; it is the cheap
// path behind the info command.
package container
