// cmd/status.go

package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"AveBody/pkg/capture"
	"AveBody/pkg/chunk"
)

type sections struct {
	Sink    string
	Records []*capture.Record
}

func printJson(v interface{}) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Fatalf("json: %s", err)
	}
	fmt.Println(string(output))
}

func status(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("CAPTURE-URL is needed")
	}
	sink, err := capture.NewSink(ctx.Args().Get(0), &capture.Config{Retries: 10, Prefix: ctx.String("prefix")})
	if err != nil {
		logger.Fatalf("capture: %s", err)
	}
	defer sink.Close()

	c := context.Background()
	if stream := ctx.String("stream"); stream != "" {
		var records []*capture.Record
		for _, d := range []chunk.Direction{chunk.Request, chunk.Response} {
			r, err := sink.Get(c, stream, d)
			if err != nil {
				logger.Debugf("get %s body: %s", d, err)
				continue
			}
			records = append(records, r)
		}
		if len(records) == 0 {
			logger.Fatalf("no body captured for stream %s", stream)
		}
		printJson(&sections{sink.Name(), records})
		return nil
	}

	records, err := sink.List(c)
	if err != nil {
		logger.Fatalf("list records: %s", err)
	}
	printJson(&sections{sink.Name(), records})
	return nil
}

func statusFlags() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "show captured bodies",
		ArgsUsage: "CAPTURE-URL",
		Action:    status,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "stream",
				Aliases: []string{"s"},
				Usage:   "show the bodies of one stream (id printed by replay)",
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "key prefix used by the capture sink",
			},
		},
	}
}
