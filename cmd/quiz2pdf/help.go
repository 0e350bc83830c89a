package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: quiz2pdf <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Generate per-student PDFs from a Canvas export")
	fmt.Fprintln(w, "  zip        Archive previously generated PDFs by question")
	fmt.Fprintln(w, "  doctor     Check pandoc, Chrome, and environment setup")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'quiz2pdf help <command>' for details on a specific command.")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: quiz2pdf run --quiz <n> --csv <path> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate one PDF per student per question group.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Required:")
	fmt.Fprintln(w, "      --quiz <n>            Quiz number (selects configs/quiz<n>.yaml)")
	fmt.Fprintln(w, "      --csv <path>          Canvas Student Analysis Report export")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Selection:")
	fmt.Fprintln(w, "      --limit <n>           Process only the first n students")
	fmt.Fprintln(w, "      --student <name>      Single student (case-insensitive substring)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --no-zip              Skip archive creation")
	fmt.Fprintln(w, "      --regenerate          Rebuild templates even if cached")
	fmt.Fprintln(w, "      --html-only           Write bound HTML only, skip PDF rendering")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel render workers (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-document timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Directories:")
	fmt.Fprintln(w, "      --config-dir <path>   Quiz configs (default: configs)")
	fmt.Fprintln(w, "      --rubrics-dir <path>  LaTeX rubrics (default: rubrics)")
	fmt.Fprintln(w, "      --templates-dir <path> Generated templates (default: templates)")
	fmt.Fprintln(w, "      --output-dir <path>   Output root (default: output)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logging:")
	fmt.Fprintln(w, "  -q, --quiet               Errors only")
	fmt.Fprintln(w, "  -v, --verbose             Debug logging")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  quiz2pdf run --quiz 5 --csv \"Quiz 5.csv\" --limit 5")
	fmt.Fprintln(w, "  quiz2pdf run --quiz 5 --csv \"Quiz 5.csv\" --student \"Alice Smith\"")
	fmt.Fprintln(w, "  quiz2pdf run --quiz 5 --csv \"Quiz 5.csv\" --regenerate --no-zip")
}

// printZipUsage prints usage for the zip command.
func printZipUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: quiz2pdf zip --quiz <n> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Archive previously generated PDFs, one folder per question.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --quiz <n>            Quiz number (required)")
	fmt.Fprintln(w, "  -o, --output <name>       Archive filename (default quiz<n>pdfs.zip)")
	fmt.Fprintln(w, "      --config-dir <path>   Quiz configs (default: configs)")
	fmt.Fprintln(w, "      --output-dir <path>   Output root (default: output)")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: quiz2pdf doctor [--json]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check pandoc, Chrome/Chromium, and environment setup.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}
	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "zip":
		printZipUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage(env.Stderr)
	}
}
