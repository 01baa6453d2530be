package main

import (
	"flag"
	"os"

	"golang.org/x/xerrors"

	yatta "github.com/Yattabyte/Installer"
	"github.com/Yattabyte/Installer/internal/dirpatch"
	"github.com/Yattabyte/Installer/internal/memrange"
)

const dirPatchHelp = `yatta pd [-flags] <dir> <patch>

Apply a directory patch (as produced by yatta dd) to dir in place: validates
every record against dir's current contents before writing anything back.

Example:
  % yatta pd -exclude=.log v1 v1-to-v2.dirpatch
`

func cmdDirPatch(args []string) error {
	fset := flag.NewFlagSet("pd", flag.ExitOnError)
	exclude := fset.String("exclude", "", "comma-separated list of extensions or relative paths to skip while scanning dir's current state")
	fset.Usage = usage(fset, dirPatchHelp)
	fset.Parse(args)

	if fset.NArg() != 2 {
		return xerrors.Errorf("syntax: yatta pd [-flags] <dir> <patch>")
	}
	root := fset.Arg(0)
	patch, err := os.ReadFile(fset.Arg(1))
	if err != nil {
		return err
	}

	ctx, cancel := yatta.InterruptibleContext()
	defer cancel()
	return dirpatch.Apply(ctx, root, memrange.New(patch), splitExclusions(*exclude), nil)
}
