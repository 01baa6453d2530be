// Command yatta exposes the content-addressed delta engine as a CLI: one
// subcommand per library operation (compress/decompress, buffer diff/patch,
// directory diff/patch) plus installer, a convenience pipeline scanning a
// directory straight into a package file.
package main

import (
	"flag"
	"fmt"
	"os"

	yatta "github.com/Yattabyte/Installer"
)

var debug = flag.Bool("debug", false, "format error messages with additional detail")

type verb func(args []string) error

func verbs() map[string]verb {
	return map[string]verb{
		"cd":        cmdCodec,
		"diff":      cmdDiff,
		"patch":     cmdPatch,
		"dd":        cmdDirDiff,
		"pd":        cmdDirPatch,
		"installer": cmdInstaller,
	}
}

func funcmain() error {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		printHelp()
		os.Exit(2)
	}
	name, rest := args[0], args[1:]
	if name == "help" {
		printHelp()
		return nil
	}

	v, ok := verbs()[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
		printHelp()
		os.Exit(2)
	}

	err := v(rest)
	// Registered cleanups (such as removing a failed write's temp file) run
	// whether or not the command succeeded.
	if cleanupErr := yatta.RunAtExit(); err == nil {
		return cleanupErr
	}
	if *debug {
		return fmt.Errorf("%s: %+v", name, err)
	}
	return fmt.Errorf("%s: %v", name, err)
}

func printHelp() {
	fmt.Fprintln(os.Stderr, "yatta [-flags] <command> [-flags] <args>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "\tcd        - compress or decompress a buffer")
	fmt.Fprintln(os.Stderr, "\tdiff      - diff two files into a buffer patch")
	fmt.Fprintln(os.Stderr, "\tpatch     - apply a buffer patch to a source file")
	fmt.Fprintln(os.Stderr, "\tdd        - diff two directory trees into a directory patch")
	fmt.Fprintln(os.Stderr, "\tpd        - apply a directory patch to a directory tree")
	fmt.Fprintln(os.Stderr, "\tinstaller - scan a directory and pack it into a package file")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "To get help on any command, use yatta <command> -help.")
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
