// cmd/replay.go

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"

	"AveBody/pkg/capture"
	"AveBody/pkg/chunk"
	"AveBody/pkg/filter"
	"AveBody/pkg/utils"
)

// readFragments splits the body like a proxy delivers it, an empty body is one empty fragment.
func readFragments(r io.Reader, size int, bar *mpb.Bar) ([][]byte, error) {
	var fragments [][]byte
	for {
		buf := make([]byte, size)
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			fragments = append(fragments, buf[:n])
			bar.IncrBy(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	if len(fragments) == 0 {
		fragments = append(fragments, []byte{})
	}
	return fragments, nil
}

func onBody(f *filter.Filter, d chunk.Direction, endOfStream bool) filter.Status {
	if d == chunk.Request {
		return f.OnRequestBody(endOfStream)
	}
	return f.OnResponseBody(endOfStream)
}

// drive plays the proxy core for one direction and returns what it sends downstream.
// With stageBuffer an earlier stage buffers every fragment, and this filter is
// called once with the buffered body re-delivered as received.
func drive(store *chunk.MemStore, f *filter.Filter, d chunk.Direction, fragments [][]byte, stageBuffer bool) ([]byte, error) {
	var out []byte
	for i, frag := range fragments {
		eos := i == len(fragments)-1
		store.Receive(d, frag)
		if stageBuffer {
			if err := store.Buffer(d); err != nil {
				return out, err
			}
			if !eos {
				continue
			}
			store.Redeliver(d)
		}
		switch st := onBody(f, d, eos); st {
		case filter.StopAndBuffer:
			if err := store.Buffer(d); err != nil {
				return out, err
			}
		case filter.Continue:
			out = append(out, store.Forward(d)...)
		default:
			return out, errors.Wrapf(f.Err(), "%s stopped at fragment %d", d, i)
		}
	}
	return out, nil
}

func replay(c *cli.Context) error {
	d, err := chunk.ParseDirection(c.String("direction"))
	if err != nil {
		return err
	}
	size := c.Int("fragment-size")
	if size <= 0 {
		return fmt.Errorf("invalid fragment size: %d", size)
	}

	var in io.Reader
	var total int64
	switch {
	case c.Args().Len() > 0:
		name := c.Args().Get(0)
		file, err := os.Open(name)
		if err != nil {
			logger.Fatalf("open %s: %s", name, err)
		}
		defer file.Close()
		if fi, err := file.Stat(); err == nil {
			total = fi.Size()
		}
		in = file
	case c.IsSet("data"):
		data := c.String("data")
		total = int64(len(data))
		in = strings.NewReader(data)
	default:
		return fmt.Errorf("FILE or --data is needed")
	}

	progress, bar := utils.NewDynProgressBar("reading body: ", c.Bool("quiet"))
	bar.SetTotal(total, false)
	reader := utils.NewLimitedReader(in, c.Int64("bwlimit")<<10)
	fragments, err := readFragments(reader, size, bar)
	bar.SetTotal(-1, true)
	progress.Wait()
	if err != nil {
		logger.Fatalf("read body: %s", err)
	}

	var sink capture.Sink
	if uri := c.String("capture"); uri != "" {
		sink, err = capture.NewSink(uri, &capture.Config{Retries: 3, Prefix: c.String("prefix")})
		if err != nil {
			logger.Fatalf("capture: %s", err)
		}
		defer sink.Close()
	}

	conf := &filter.Config{
		Compression: c.String("compress"),
		Directions:  []chunk.Direction{d},
		Capture:     sink != nil,
		BufferLimit: c.Uint64("buffer-limit") << 10,
	}
	store := chunk.NewMemStore(0)
	f, err := filter.New(conf, store, sink)
	if err != nil {
		logger.Fatalf("filter: %s", err)
	}

	out, err := drive(store, f, d, fragments, c.Bool("stage-buffer"))
	if err != nil {
		f.OnStreamReset()
		logger.Fatalf("replay stream %s: %s", f.ID(), err)
	}
	if err = f.OnStreamComplete(context.Background()); err != nil {
		logger.Errorf("capture stream %s: %s", f.ID(), err)
	}

	w := os.Stdout
	if name := c.String("out"); name != "" {
		if w, err = os.Create(name); err != nil {
			logger.Fatalf("create %s: %s", name, err)
		}
		defer w.Close()
	}
	if _, err = w.Write(out); err != nil {
		return err
	}
	logger.Infof("Stream %s: %d %s fragments, %d bytes in, %d bytes out", f.ID(), len(fragments), d, total, len(out))
	return nil
}

func replayFlags() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "replay a body through the body filter",
		ArgsUsage: "[FILE]",
		Action:    replay,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data",
				Usage: "body content when no FILE is given",
			},
			&cli.StringFlag{
				Name:  "direction",
				Value: "request",
				Usage: "direction of the body (request, response)",
			},
			&cli.IntFlag{
				Name:  "fragment-size",
				Value: 16 << 10,
				Usage: "size of each delivered fragment in bytes",
			},
			&cli.Int64Flag{
				Name:  "bwlimit",
				Value: 0,
				Usage: "bandwidth limit for reading the body in KiB/s",
			},
			&cli.BoolFlag{
				Name:  "stage-buffer",
				Usage: "an earlier stage buffers the body and re-delivers it",
			},
			&cli.StringFlag{
				Name:  "compress",
				Value: "none",
				Usage: "compression algorithm applied to the whole body (lz4, zstd, none)",
			},
			&cli.Uint64Flag{
				Name:  "buffer-limit",
				Value: 0,
				Usage: "limit of a buffered view in KiB",
			},
			&cli.StringFlag{
				Name:  "capture",
				Usage: "URL of a capture sink (memory://, redis://host:6379/1)",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "key prefix used by the capture sink",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "write the forwarded body to a file instead of stdout",
			},
		},
	}
}
