package main

import (
	"flag"
	"os"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/Installer/internal/delta"
	"github.com/Yattabyte/Installer/internal/memrange"
)

const patchHelp = `yatta patch [-flags] <source> <diff> <output>

Reconstruct output by applying diff (as produced by yatta diff) to source.

Example:
  % yatta patch v1.bin v1-to-v2.patch v2.bin
`

func cmdPatch(args []string) error {
	fset := flag.NewFlagSet("patch", flag.ExitOnError)
	fset.Usage = usage(fset, patchHelp)
	fset.Parse(args)

	if fset.NArg() != 3 {
		return xerrors.Errorf("syntax: yatta patch [-flags] <source> <diff> <output>")
	}
	source, err := os.ReadFile(fset.Arg(0))
	if err != nil {
		return err
	}
	diff, err := os.ReadFile(fset.Arg(1))
	if err != nil {
		return err
	}

	result, err := delta.Patch(memrange.New(source), memrange.New(diff))
	if err != nil {
		return err
	}
	return os.WriteFile(fset.Arg(2), result.Bytes(), 0o644)
}
