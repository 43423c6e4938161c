package zippack

import (
	"hash"
	"io"
)

// copyBufSize is the chunk size for streaming copies.
const copyBufSize = 8 * 1024

// copyChunks moves all remaining bytes from src to dst in fixed-size chunks,
// folding every chunk written into sum, then flushes dst when it supports
// flushing. Neither stream is closed; ownership stays with the caller, which
// lets both traversal directions share this primitive.
func copyChunks(dst io.Writer, src io.Reader, sum hash.Hash32) error {
	buf := make([]byte, copyBufSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
			sum.Write(buf[:n]) // hash.Hash writes never fail
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return rerr
		}
	}

	if f, ok := dst.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}
