// Command gwebp decodes lossless WebP images from the command line.
//
// Usage:
//
//	gwebp dec [options] <input.webp>   WebP (VP8L) → PNG (use "-" for stdin, -o - for stdout)
//	gwebp info <input.webp>            Display WebP metadata
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/webpdec/vp8l"
	"github.com/webpdec/vp8l/internal/pool"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "dec":
		err = runDec(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "gwebp: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gwebp: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  gwebp dec [options] <input.webp>   Decode lossless WebP to PNG
  gwebp info <input.webp>            Display WebP metadata

Use "-" as input to read from stdin, "-o -" to write to stdout.
`)
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// readAllPooled reads r fully into memory. When r is a regular, non-empty
// file of at most pool.Size64K bytes, the read buffer comes from the shared
// byte pool instead of a fresh allocation; release it with pool.Put once the
// caller is done decoding from it. Larger files, stdin and other unsized
// readers fall back to io.ReadAll, whose result must not be passed to
// pool.Put.
func readAllPooled(r io.Reader) (data []byte, pooled bool, err error) {
	if f, ok := r.(*os.File); ok {
		if fi, statErr := f.Stat(); statErr == nil && fi.Mode().IsRegular() {
			size := fi.Size()
			if size > 0 && size <= pool.Size64K {
				buf := pool.Get(int(size))
				if _, err := io.ReadFull(f, buf); err != nil {
					pool.Put(buf)
					return nil, false, err
				}
				return buf, true, nil
			}
		}
	}
	data, err = io.ReadAll(r)
	return data, false, err
}

// --- dec ---

func runDec(args []string) error {
	fs := flag.NewFlagSet("dec", flag.ContinueOnError)
	output := fs.String("o", "", `output path (default: <input>.png, "-" for stdout)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("dec: missing input file\nUsage: gwebp dec [options] <input.webp>")
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	data, pooled, err := readAllPooled(in)
	in.Close()
	if err != nil {
		return fmt.Errorf("dec: reading input: %w", err)
	}
	if pooled {
		defer pool.Put(data)
	}

	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("dec: %w", err)
	}

	outputPath := *output
	if outputPath == "-" {
		return png.Encode(os.Stdout, img)
	}

	if outputPath == "" {
		if inputPath == "-" {
			outputPath = "output.png"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
			outputPath = base + ".png"
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(outputPath)
		return fmt.Errorf("dec: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}

	fmt.Fprintf(os.Stderr, "Decoded %s -> %s\n", inputPath, outputPath)
	return nil
}

// --- info ---

func runInfo(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("info: missing input file\nUsage: gwebp info <input.webp>")
	}
	inputPath := args[0]

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	feat, err := webp.GetFeatures(in)
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}

	fmt.Printf("File:       %s\n", name)
	fmt.Printf("Format:     %s\n", feat.Format)
	fmt.Printf("Dimensions: %d x %d\n", feat.Width, feat.Height)
	fmt.Printf("Alpha:      %v\n", feat.HasAlpha)
	fmt.Printf("Animation:  %v\n", feat.HasAnimation)
	if feat.HasAnimation {
		fmt.Printf("Frames:     %d\n", feat.FrameCount)
		loop := "infinite"
		if feat.LoopCount > 0 {
			loop = fmt.Sprintf("%d", feat.LoopCount)
		}
		fmt.Printf("Loop count: %s\n", loop)
	}

	if inputPath != "-" {
		fi, err := os.Stat(inputPath)
		if err == nil {
			fmt.Printf("File size:  %d bytes\n", fi.Size())
		}
	}

	return nil
}
