package main

import (
	"flag"
	"os"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/Installer/internal/codec"
	"github.com/Yattabyte/Installer/internal/memrange"
)

const codecHelp = `yatta cd [-flags] <input> <output>

Compress or decompress a file as a single "yatta compress" framed buffer.

Example:
  % yatta cd -mode=compress readme.txt readme.txt.yc
  % yatta cd -mode=decompress readme.txt.yc readme.txt
`

func cmdCodec(args []string) error {
	fset := flag.NewFlagSet("cd", flag.ExitOnError)
	mode := fset.String("mode", "compress", "compress or decompress")
	fset.Usage = usage(fset, codecHelp)
	fset.Parse(args)

	if fset.NArg() != 2 {
		return xerrors.Errorf("syntax: yatta cd [-flags] <input> <output>")
	}
	input, output := fset.Arg(0), fset.Arg(1)

	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	switch *mode {
	case "compress":
		out, err := codec.Compress(memrange.New(data))
		if err != nil {
			return err
		}
		return os.WriteFile(output, out.Bytes(), 0o644)
	case "decompress":
		out, err := codec.Decompress(memrange.New(data))
		if err != nil {
			return err
		}
		return os.WriteFile(output, out.Bytes(), 0o644)
	default:
		return xerrors.Errorf("unknown -mode %q: want compress or decompress", *mode)
	}
}
