package main

import (
	"flag"
	"os"
	"strings"

	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
	"github.com/Yattabyte/Installer/internal/batch"
	"github.com/Yattabyte/Installer/internal/dirdiff"
	"github.com/Yattabyte/Installer/internal/vfile"
)

const dirDiffHelp = `yatta dd [-flags] <old dir> <new dir> <patch>

Diff two directory trees, writing the per-file add/remove/update instruction
set that transforms old dir into new dir to patch.

Example:
  % yatta dd -exclude=.log,build/cache v1 v2 v1-to-v2.dirpatch
`

func cmdDirDiff(args []string) error {
	fset := flag.NewFlagSet("dd", flag.ExitOnError)
	exclude := fset.String("exclude", "", "comma-separated list of extensions or relative paths to skip")
	fset.Usage = usage(fset, dirDiffHelp)
	fset.Parse(args)

	if fset.NArg() != 3 {
		return xerrors.Errorf("syntax: yatta dd [-flags] <old dir> <new dir> <patch>")
	}
	exclusions := splitExclusions(*exclude)

	oldModel, err := vfile.Scan(fset.Arg(0), exclusions, nil)
	if err != nil {
		return err
	}
	newModel, err := vfile.Scan(fset.Arg(1), exclusions, nil)
	if err != nil {
		return err
	}

	ctx, cancel := yatta.InterruptibleContext()
	defer cancel()
	diff, err := dirdiff.DiffConcurrent(ctx, &batch.Ctx{}, oldModel, newModel)
	if err != nil {
		return err
	}
	return os.WriteFile(fset.Arg(2), diff.Bytes(), 0o644)
}

func splitExclusions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
