package main

import (
	"flag"
	"os"

	"golang.org/x/xerrors"

	"github.com/Yattabyte/Installer/internal/pack"
	"github.com/Yattabyte/Installer/internal/vfile"
)

const installerHelp = `yatta installer [-flags] <input dir> <output package>

Scan input dir into a DirectoryModel and pack it into a single compressed
package file, the same pipeline an installer builder runs before shipping a
release.

Example:
  % yatta installer -exclude=.log,.tmp build/payload release.yatta
`

func cmdInstaller(args []string) error {
	fset := flag.NewFlagSet("installer", flag.ExitOnError)
	exclude := fset.String("exclude", "", "comma-separated list of extensions or relative paths to skip")
	fset.Usage = usage(fset, installerHelp)
	fset.Parse(args)

	if fset.NArg() != 2 {
		return xerrors.Errorf("syntax: yatta installer [-flags] <input dir> <output package>")
	}

	model, err := vfile.Scan(fset.Arg(0), splitExclusions(*exclude), nil)
	if err != nil {
		return err
	}
	packed, err := pack.Pack(model)
	if err != nil {
		return err
	}
	return os.WriteFile(fset.Arg(1), packed.Bytes(), 0o644)
}
