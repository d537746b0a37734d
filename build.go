//go:build ignore

// build.go - PIDIM SMART Reports build system
// Usage: go run build.go [-target=TARGET]
// Targets: all, web, reportgen, clean, test, release

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const versionPkg = "pidimsmart/pkg/contracts"

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	Version string
	GOOS    string
	GOARCH  string
}

var (
	distDir = "dist"

	// Executable names (key = cmd dir name, value = output binary name)
	executables = map[string]string{
		"web":       "pidim-reports",
		"reportgen": "pidim-reportgen",
	}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	version := flag.String("version", "", "Override the embedded version")
	goos := flag.String("os", runtime.GOOS, "Target operating system")
	goarch := flag.String("arch", runtime.GOARCH, "Target architecture")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	ctx := &BuildContext{
		Verbose: *verbose,
		Version: *version,
		GOOS:    *goos,
		GOARCH:  *goarch,
	}

	switch *target {
	case "all":
		buildAll(ctx)
	case "web", "reportgen":
		buildExecutable(*target, ctx)
	case "clean":
		clean()
	case "test":
		runTests(ctx.Verbose)
	case "release":
		buildRelease(ctx)
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "    PIDIM SMART Reports - Build System     " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

func printWarning(msg string) {
	fmt.Printf("%s[WARNING]%s %s\n", colorYellow, colorReset, msg)
}

func buildAll(ctx *BuildContext) {
	printInfo("Building all executables...")
	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}
	for name := range executables {
		buildExecutable(name, ctx)
	}
	printSuccess("All executables built successfully!")
}

func buildExecutable(name string, ctx *BuildContext) {
	binName, ok := executables[name]
	if !ok {
		printError(fmt.Sprintf("Unknown executable: %s", name))
		os.Exit(1)
	}
	if ctx.GOOS == "windows" {
		binName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s for %s/%s...", name, ctx.GOOS, ctx.GOARCH))
	outputPath := filepath.Join(distDir, binName)

	args := []string{"build", "-trimpath", "-ldflags", ldflags(ctx), "-o", outputPath, "./cmd/" + name}
	if ctx.Verbose {
		args = append([]string{"build", "-v"}, args[1:]...)
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
	}

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), "GOOS="+ctx.GOOS, "GOARCH="+ctx.GOARCH, "CGO_ENABLED=0")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", binName, float64(info.Size())/1024/1024))
	}
}

func ldflags(ctx *BuildContext) string {
	flags := []string{
		"-s", "-w",
		fmt.Sprintf("-X %s.BuildTime=%s", versionPkg, time.Now().UTC().Format(time.RFC3339)),
		fmt.Sprintf("-X %s.GitCommit=%s", versionPkg, gitCommit()),
	}
	if ctx.Version != "" {
		flags = append(flags, fmt.Sprintf("-X %s.Version=%s", versionPkg, ctx.Version))
	}
	return strings.Join(flags, " ")
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func clean() {
	printInfo("Cleaning build artifacts and logs...")
	for _, dir := range []string{distDir, "logs", "reports"} {
		if err := os.RemoveAll(dir); err != nil {
			printError(fmt.Sprintf("Failed to clean %s: %v", dir, err))
		}
	}
	printSuccess("Build artifacts cleaned")
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

// buildRelease cross-compiles the server for the deployment targets
func buildRelease(ctx *BuildContext) {
	printInfo("Building release...")
	runTests(ctx.Verbose)

	targets := [][2]string{{"linux", "amd64"}, {"linux", "arm64"}, {"windows", "amd64"}}
	base := distDir
	for _, t := range targets {
		distDir = filepath.Join(base, t[0]+"_"+t[1])
		if err := os.MkdirAll(distDir, 0755); err != nil {
			printWarning(fmt.Sprintf("Skipping %s/%s: %v", t[0], t[1], err))
			continue
		}
		for name := range executables {
			buildExecutable(name, &BuildContext{Verbose: ctx.Verbose, Version: ctx.Version, GOOS: t[0], GOARCH: t[1]})
		}
	}
	distDir = base
	printSuccess("Release build completed")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v] [-version=X.Y.Z] [-os=GOOS] [-arch=GOARCH]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  all        Build the server and the report generator (default)")
	fmt.Println("  web        Build the HTTP server")
	fmt.Println("  reportgen  Build the offline report generator")
	fmt.Println("  clean      Remove dist, logs and generated reports")
	fmt.Println("  test       Run Go tests with the race detector")
	fmt.Println("  release    Run tests and cross-compile all executables")
}
