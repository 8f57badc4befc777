package main

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kr/pretty"
)

// main.go drives the pipeline: read the .vy source, run lex -> parse ->
// analyze -> lower -> emit, write the script and its wrapper, and in
// non-verbose mode hand the script to the host interpreter.

func usage() {
	fmt.Println("Vypr Compiler - Translates Vypr (.vy) files to Python")
	fmt.Println("Usage: vypr [options] <source_file.vy>")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose  Show compilation progress and debugging information")
	fmt.Println("  -o <basename>  Specify output basename (without extension)")
	fmt.Println("  -h, --help     Show this help message")
}

func main() {
	var verbose bool
	var outBase, srcFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-v", "--verbose":
			verbose = true
		case "-o", "--output":
			if i+1 >= len(args) {
				fmt.Fprintln(os.Stderr, "Error: Missing output filename after -o")
				usage()
				os.Exit(1)
			}
			i++
			outBase = args[i]
		case "-h", "--help":
			usage()
			return
		default:
			srcFile = arg
		}
	}

	if srcFile == "" {
		fmt.Fprintln(os.Stderr, "Error: No source file specified")
		usage()
		os.Exit(1)
	}
	if !strings.HasSuffix(srcFile, ".vy") {
		fmt.Fprintln(os.Stderr, "Error: Source file must have .vy extension")
		os.Exit(1)
	}

	source, err := os.ReadFile(srcFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Could not open source file: %s\n", srcFile)
		os.Exit(1)
	}

	srcDir := filepath.Dir(srcFile)
	config, err := loadConfig(srcDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if config.Build.Verbose {
		verbose = true
	}
	if outBase == "" && config.Build.Output != "" {
		outBase = config.Build.Output
		if !filepath.IsAbs(outBase) {
			outBase = filepath.Join(srcDir, outBase)
		}
	}
	if outBase == "" {
		outBase = strings.TrimSuffix(srcFile, ".vy")
	}

	pyFile, batFile, err := compile(string(source), outBase, verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if verbose {
		fmt.Println("\nVerbose mode: Skipping automatic execution.")
		return
	}

	fmt.Println("Compilation successful!")
	fmt.Println("Output files:")
	fmt.Printf("  - %s\n", pyFile)
	fmt.Printf("  - %s\n", batFile)

	if config.shouldRun() {
		runScript(config.Build.Python, pyFile)
	}
}

// compile runs every stage over the source and writes outBase.py and
// outBase.bat. In verbose mode each stage dumps its product.
func compile(source, outBase string, verbose bool) (pyFile, batFile string, err error) {
	if verbose {
		fmt.Println("\n=== Lexical Analysis ===")
	}
	tokens, err := lex(source)
	if err != nil {
		return "", "", err
	}
	if verbose {
		fmt.Printf("Tokens found (%d):\n", len(tokens))
		for i, tok := range tokens {
			fmt.Printf("  %d: %s\n", i, tok)
		}
		fmt.Println()
		fmt.Println("=== Syntax Analysis ===")
	}

	prog, err := parse(tokens)
	if err != nil {
		return "", "", err
	}
	if verbose {
		fmt.Println("Abstract Syntax Tree:")
		pretty.Println(prog)
		fmt.Println()
		fmt.Println("=== Semantic Analysis ===")
	}

	a := newAnalyzer()
	if err := a.analyze(prog); err != nil {
		return "", "", err
	}
	if verbose {
		a.printSymbolTable(os.Stdout)
		fmt.Println()
		fmt.Println("=== Intermediate Representation ===")
	}

	funcs := lower(prog)
	if verbose {
		printIR(os.Stdout, funcs)
		fmt.Println()
		fmt.Println("=== Code Generation ===")
	}

	pyFile = outBase + ".py"
	if err := writeScript(pyFile, funcs); err != nil {
		return "", "", err
	}

	batFile = outBase + ".bat"
	if err := writeWrapper(batFile, pyFile); err != nil {
		return "", "", err
	}

	if verbose {
		fmt.Println("=== Output Files ===")
		fmt.Println("Generated files:")
		fmt.Printf("  - %s\n", pyFile)
		fmt.Printf("  - %s\n", batFile)
	}
	return pyFile, batFile, nil
}

func writeScript(pyFile string, funcs []*irFunc) error {
	out, err := os.Create(pyFile)
	if err != nil {
		return fmt.Errorf("could not open output file %s: %w", pyFile, err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	if err := emitPython(w, funcs); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("could not write output file %s: %w", pyFile, err)
	}
	return nil
}

// writeWrapper writes a one-line batch wrapper that hands the generated
// script to the host interpreter by absolute path.
func writeWrapper(batFile, pyFile string) error {
	abs, err := filepath.Abs(pyFile)
	if err != nil {
		abs = pyFile
	}
	content := "@echo off\npython \"" + abs + "\" %*\n"
	if err := os.WriteFile(batFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("could not create wrapper %s: %w", batFile, err)
	}
	return nil
}

func runScript(python, pyFile string) {
	fmt.Println("\nAttempting to run generated Python script...")
	fmt.Print("\n==================== Program Output Start ====================\n\n")

	cmd := exec.Command(python, pyFile)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	runErr := cmd.Run()

	fmt.Print("\n==================== Program Output End ======================\n\n")

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: Python script execution might have failed (%v). Ensure '%s' is in your PATH.\n", runErr, python)
	}
}
