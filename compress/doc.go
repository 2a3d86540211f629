// Package compress provides the decompression gateway used by both decoder
// cores: a uniform interface over the algorithms the text dump and binary
// trace formats can declare for a payload (none, zlib, gzip, lz4, a
// dual-stage lz4, and fastlz).
//
// Every codec decompresses into a buffer sized to the caller's declared
// uncompressed size. When a codec produces fewer bytes than declared and
// cannot be asked for more input, it returns what it has along with
// ErrShortDecode via errors.Is so the caller can decide whether a partial
// result is acceptable (frame sections are) or fatal (value-change chunks
// are not, per the binary trace format).
package compress
