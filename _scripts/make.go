package main

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

const NodebugMainPackagePath = "github.com/nodebug/nodebug/cmd/nodebug"

var Verbose bool
var NOTimeout bool
var TestSet, TestRegex string
var InstallRoot string

func NewMakeCommands() *cobra.Command {
	RootCommand := &cobra.Command{
		Use:   "make.go",
		Short: "make script for nodebug.",
	}

	RootCommand.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Build nodebug",
		Run: func(cmd *cobra.Command, args []string) {
			execute("go", "build", "-o", filepath.Join("bin", exeName()), NodebugMainPackagePath)
		},
	})

	install := &cobra.Command{
		Use:   "install",
		Short: "Installs nodebug and node-inspector",
		Long: `Installs nodebug and node-inspector.

The nodebug executable is placed in <root>/bin and node-inspector is installed
with npm into <root>/node_modules, where nodebug looks for it.`,
		Run: func(cmd *cobra.Command, args []string) {
			root, err := filepath.Abs(InstallRoot)
			if err != nil {
				log.Fatal(err)
			}
			execute("go", "build", "-o", filepath.Join(root, "bin", exeName()), NodebugMainPackagePath)
			execute("npm", "install", "--prefix", root, "node-inspector")
		},
	}
	install.Flags().StringVar(&InstallRoot, "root", ".", "Installation root.")
	RootCommand.AddCommand(install)

	test := &cobra.Command{
		Use:   "test",
		Short: "Tests nodebug",
		Long: `Tests nodebug.

Use the flags -s and -r to specify which tests to run. Specifying nothing will run all tests.
`,
		Run: testCmd,
	}
	test.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Verbose tests")
	test.PersistentFlags().BoolVarP(&NOTimeout, "timeout", "t", false, "Set infinite timeouts")
	test.PersistentFlags().StringVarP(&TestSet, "test-set", "s", "", `Select the set of tests to run, one of either:
	all		tests all packages
	package-name	test the specified package only
`)
	test.PersistentFlags().StringVarP(&TestRegex, "test-run", "r", "", `Only runs the tests matching the specified regex. This option can only be specified if testset is a single package`)
	RootCommand.AddCommand(test)

	RootCommand.AddCommand(&cobra.Command{
		Use:   "docs",
		Short: "Generates the usage documentation",
		Run: func(cmd *cobra.Command, args []string) {
			execute("go", "run", "_scripts/gen-usage-docs.go")
		},
	})

	return RootCommand
}

func exeName() string {
	goos := os.Getenv("GOOS")
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos == "windows" {
		return "nodebug.exe"
	}
	return "nodebug"
}

func strflatten(v []interface{}) []string {
	r := []string{}
	for _, s := range v {
		switch s := s.(type) {
		case []string:
			r = append(r, s...)
		case string:
			if s != "" {
				r = append(r, s)
			}
		}
	}
	return r
}

func executeq(cmd string, args ...interface{}) {
	x := exec.Command(cmd, strflatten(args)...)
	x.Stdout = os.Stdout
	x.Stderr = os.Stderr
	x.Env = os.Environ()
	err := x.Run()
	if x.ProcessState != nil && !x.ProcessState.Success() {
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func execute(cmd string, args ...interface{}) {
	fmt.Printf("%s %s\n", cmd, strings.Join(quotemaybe(strflatten(args)), " "))
	executeq(cmd, args...)
}

func quotemaybe(args []string) []string {
	for i := range args {
		if strings.Contains(args[i], " ") {
			args[i] = fmt.Sprintf("%q", args[i])
		}
	}
	return args
}

func getoutput(cmd string, args ...interface{}) string {
	x := exec.Command(cmd, strflatten(args)...)
	x.Env = os.Environ()
	out, err := x.Output()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error executing %s %v\n", cmd, args)
		log.Fatal(err)
	}
	return string(out)
}

func testFlags() []string {
	testFlags := []string{"-count", "1", "-race"}
	if Verbose {
		testFlags = append(testFlags, "-v")
	}
	if NOTimeout {
		testFlags = append(testFlags, "-timeout", "0")
	}
	return testFlags
}

func testCmd(cmd *cobra.Command, args []string) {
	packages := testSetToPackages(TestSet)
	if len(packages) == 0 {
		fmt.Fprintf(os.Stderr, "unknown test set %q\n", TestSet)
		os.Exit(1)
	}
	if TestRegex != "" {
		if len(packages) != 1 {
			fmt.Fprintln(os.Stderr, "cannot use -r with more than one package")
			os.Exit(1)
		}
		execute("go", "test", testFlags(), packages, "-run="+TestRegex)
		return
	}
	execute("go", "test", testFlags(), packages)
}

func testSetToPackages(testSet string) []string {
	all := allPackages()
	switch testSet {
	case "", "all":
		return all
	}
	for _, pkg := range all {
		if pkg == testSet || strings.HasSuffix(pkg, "/"+testSet) {
			return []string{pkg}
		}
	}
	return nil
}

func allPackages() []string {
	r := []string{}
	for _, dir := range strings.Split(getoutput("go", "list", "./..."), "\n") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		r = append(r, dir)
	}
	sort.Strings(r)
	return r
}

func main() {
	NewMakeCommands().Execute()
}
