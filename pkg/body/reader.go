// pkg/body/reader.go

package body

import "AveBody/pkg/chunk"

// ReadWhole returns an owned copy of the whole body of direction d.
// Buffered content comes first; when both views alias it is copied once.
func ReadWhole(s chunk.Store, d chunk.Direction) []byte {
	// chunks are borrowed, nothing is copied until the aliasing is known
	received, _ := s.GetView(d, chunk.Received)
	buffered, _ := s.GetView(d, chunk.Buffered)

	if SameChunks(received, buffered) {
		return appendChunks(make([]byte, 0, buffered.Size()), buffered)
	}
	body := make([]byte, 0, buffered.Size()+received.Size())
	body = appendChunks(body, buffered)
	return appendChunks(body, received)
}

// ReadWholeRequestBody reads the whole request body. Only valid once the request
// ended: end of stream in the body callback, or the trailers callback.
func ReadWholeRequestBody(s chunk.Store) []byte {
	return ReadWhole(s, chunk.Request)
}

// ReadWholeResponseBody reads the whole response body, see ReadWholeRequestBody.
func ReadWholeResponseBody(s chunk.Store) []byte {
	return ReadWhole(s, chunk.Response)
}

func appendChunks(body []byte, seq chunk.Sequence) []byte {
	for _, c := range seq {
		body = append(body, c.Data...)
	}
	return body
}
