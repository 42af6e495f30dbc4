//go:build (darwin || linux) && (amd64 || arm64)

package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pingostack/govpx/core/errcode"
	"github.com/pingostack/govpx/core/frame"
	"github.com/pingostack/govpx/core/packet"
	"github.com/pingostack/govpx/core/plugin"
	"github.com/pingostack/govpx/core/video"
	_ "github.com/pingostack/govpx/plugins"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "vpxdec",
		Usage: "decode an IVF file to raw planar YUV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "IVF input file"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "raw YUV output file"},
			&cli.BoolFlag{Name: "pool", Usage: "decode through a shared frame pool"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	in, err := os.Open(c.String("input"))
	if err != nil {
		return err
	}
	defer in.Close()

	var out io.Writer = io.Discard
	if path := c.String("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	codecType, frames, err := readIVF(in)
	if err != nil {
		return err
	}

	decoder, err := plugin.CreateDecoder(c.Context, codecType)
	if err != nil {
		return err
	}
	defer decoder.Close()

	var pool *frame.Pool
	if c.Bool("pool") {
		pool = frame.NewPool()
	}

	decoded := 0
	for _, pkt := range frames {
		if err := decoder.SendPacket(pkt); err != nil {
			return err
		}
		n, err := drain(decoder, pool, out)
		if err != nil {
			return err
		}
		decoded += n
	}

	if err := decoder.Flush(); err != nil {
		return err
	}
	n, err := drain(decoder, pool, out)
	if err != nil {
		return err
	}
	decoded += n

	fmt.Printf("decoded %d frames (%s)\n", decoded, codecType)
	return nil
}

func drain(decoder plugin.VideoDecoder, pool *frame.Pool, out io.Writer) (int, error) {
	n := 0
	for {
		f, err := decoder.ReceiveFrame(pool)
		if errors.Is(err, errcode.ErrAgain) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := writeFrame(out, f); err != nil {
			f.Release()
			return n, err
		}
		f.Release()
		n++
	}
}

func writeFrame(out io.Writer, f *frame.Frame) error {
	for plane := 0; plane < f.PlaneCount(); plane++ {
		rowBytes := int(f.Desc.PixelFormat.PlaneWidth(plane, f.Desc.Width)) * f.Desc.PixelFormat.BytesPerSample()
		height := int(f.Desc.PixelFormat.PlaneHeight(plane, f.Desc.Height))
		data := f.Plane(plane)
		stride := f.Stride(plane)
		for row := 0; row < height; row++ {
			if _, err := out.Write(data[row*stride : row*stride+rowBytes]); err != nil {
				return err
			}
		}
	}
	return nil
}

// readIVF parses an IVF container: a 32 byte file header followed by frames
// of a 12 byte header plus payload.
func readIVF(r io.Reader) (video.CodecType, []*packet.Packet, error) {
	header := make([]byte, 32)
	if _, err := io.ReadFull(r, header); err != nil {
		return video.CodecTypeUnknown, nil, errors.Wrap(err, "read IVF header")
	}
	if string(header[0:4]) != "DKIF" {
		return video.CodecTypeUnknown, nil, errors.New("not an IVF file")
	}

	var codecType video.CodecType
	switch string(header[8:12]) {
	case "VP80":
		codecType = video.CodecTypeVP8
	case "VP90":
		codecType = video.CodecTypeVP9
	default:
		return video.CodecTypeUnknown, nil, errors.Errorf("unsupported fourcc %q", header[8:12])
	}

	var frames []*packet.Packet
	frameHeader := make([]byte, 12)
	for {
		if _, err := io.ReadFull(r, frameHeader); err != nil {
			if err == io.EOF {
				break
			}
			return video.CodecTypeUnknown, nil, errors.Wrap(err, "read frame header")
		}
		size := binary.LittleEndian.Uint32(frameHeader[0:4])
		pts := binary.LittleEndian.Uint64(frameHeader[4:12])
		data := make([]byte, size)
		if _, err := io.ReadFull(r, data); err != nil {
			return video.CodecTypeUnknown, nil, errors.Wrap(err, "read frame payload")
		}
		frames = append(frames, &packet.Packet{Data: data, Pts: pts})
	}

	return codecType, frames, nil
}
