package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/y-maeda1116/FlowPrint/internal/codec"
	"github.com/y-maeda1116/FlowPrint/internal/ops"
	"github.com/y-maeda1116/FlowPrint/internal/persist"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backup":
		if err := cmdBackup(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "backup failed:", err)
			os.Exit(1)
		}
	case "restore":
		if err := cmdRestore(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "restore failed:", err)
			os.Exit(1)
		}
	case "export":
		if err := cmdExport(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "export failed:", err)
			os.Exit(1)
		}
	case "import":
		if err := cmdImport(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "import failed:", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: ops <command> [flags]

commands:
  backup   archive the data directory to a tar.gz
  restore  unpack a backup archive into a directory
  export   write the current state blob as a backup JSON file
  import   validate a backup JSON file and install it as the state blob`)
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "flowprint-"+ts+".tar.gz")
	}
	if err := ops.BackupDataDir(*dataDir, *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	return ops.RestoreDataDir(*archive, *target)
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output file (defaults to flowprint_backup_<ts>.json)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	blob, err := persist.NewStore(*dataDir)
	if err != nil {
		return err
	}
	b, found, err := blob.Load()
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no state blob under %s", *dataDir)
	}
	if _, ok := codec.Import(b); !ok {
		return fmt.Errorf("state blob is malformed; refusing to export")
	}

	if *out == "" {
		*out = codec.BackupFilename(time.Now())
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	file := fs.String("file", "", "backup JSON file to install")
	force := fs.Bool("force", false, "accept a schema version mismatch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("file is required")
	}

	b, err := os.ReadFile(*file)
	if err != nil {
		return err
	}
	res, ok := codec.Import(b)
	if !ok {
		return fmt.Errorf("%s is not a valid flowprint backup", *file)
	}
	if res.VersionMismatch && !*force {
		return fmt.Errorf("schema version %d differs from current %d (use -force to import anyway)",
			res.Version, codec.SchemaVersion)
	}

	blob, err := persist.NewStore(*dataDir)
	if err != nil {
		return err
	}
	if err := blob.Save(b); err != nil {
		return err
	}
	fmt.Printf("imported %d tasks\n", len(res.Tasks))
	return nil
}
