package main

import (
	"flag"
	"os"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/Installer/internal/delta"
	"github.com/Yattabyte/Installer/internal/memrange"
)

const diffHelp = `yatta diff [-flags] <source> <target> <patch>

Diff source against target, writing the instruction stream that transforms
source into target to patch.

Example:
  % yatta diff v1.bin v2.bin v1-to-v2.patch
`

func cmdDiff(args []string) error {
	fset := flag.NewFlagSet("diff", flag.ExitOnError)
	fset.Usage = usage(fset, diffHelp)
	fset.Parse(args)

	if fset.NArg() != 3 {
		return xerrors.Errorf("syntax: yatta diff [-flags] <source> <target> <patch>")
	}
	source, err := os.ReadFile(fset.Arg(0))
	if err != nil {
		return err
	}
	target, err := os.ReadFile(fset.Arg(1))
	if err != nil {
		return err
	}

	diff, err := delta.Diff(memrange.New(source), memrange.New(target))
	if err != nil {
		return err
	}
	return os.WriteFile(fset.Arg(2), diff.Bytes(), 0o644)
}
