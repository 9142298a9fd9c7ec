// pkg/body/doc.go

/*
Package body rebuilds and replaces whole HTTP bodies on top of a chunk.Store.

A host exposes two views per direction: the fragment just received by this stage
and the content it buffered for earlier stages. When an earlier stage asked the
host to buffer, the host may later re-deliver that same storage as the received
view, so both views can alias. The only signal available is the identity of the
storage behind each chunk; two views alias when their identity sequences are
equal element by element.

ReadWhole must only be called once the end of the stream is known, that is when
the body callback reports end of stream or the trailers arrive. An earlier call
returns the bytes seen so far, which is not the final body. Nothing here can
detect that misuse.
*/
package body
