package e2e

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/operator-framework/aspdebug/cmd/root"
)

const coloring = `% two colors are not enough for a triangle
node(1..3).
col(r). col(g).
edge(1,2). edge(2,3). edge(1,3).

{ color(N,C) : col(C) } = 1 :- node(N).

:- edge(X,Y), color(X,C),
   color(Y,C).
:- color(1,g).
`

func Logf(f string, v ...interface{}) {
	if !strings.HasSuffix(f, "\n") {
		f += "\n"
	}
	fmt.Fprintf(GinkgoWriter, f, v...)
}

var _ = Describe("Debugging with clingo", func() {
	var (
		path           string
		stdout, stderr *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := root.NewRootCmd()
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(append([]string{"--clingo", clingoPath}, args...))
		err := cmd.Execute()
		Logf("aspdebug %s:\n%s", strings.Join(args, " "), stderr.String())
		return err
	}

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "coloring.lp")
		Expect(os.WriteFile(path, []byte(coloring), 0o600)).To(Succeed())
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	When("the coloring has too few colors", func() {
		It("should count the constraints", func() {
			Expect(execute("--get-num-steps", path)).To(Succeed())
			Expect(stdout.String()).To(Equal("2\n"))
		})

		It("should blame the edge constraint", func() {
			Expect(execute("-v", path)).To(Succeed())
			By("checking the complete program first")
			Expect(stderr.String()).To(ContainSubstring("Complete problem is unsatisfiable"))
			By("reporting the only helpful removal")
			Expect(stderr.String()).To(ContainSubstring("Constraint [1] is causing unsatisfiability"))
			Expect(stderr.String()).To(ContainSubstring(":- edge(X,Y), color(X,C),color(Y,C)."))
			Expect(stderr.String()).ToNot(ContainSubstring("Constraint [2] is causing unsatisfiability"))
		})

		It("should check a single step", func() {
			Expect(execute("-s", "--step", "2", path)).To(Succeed())
			Expect(stderr.String()).To(ContainSubstring("Removing constraints [2] does not make the problem satisfiable"))
		})
	})

	When("the program is satisfiable", func() {
		It("should have nothing to debug", func() {
			Expect(os.WriteFile(path, []byte("col(r;g).\n{ pick(C) : col(C) } = 1.\n:- pick(r).\n"), 0o600)).To(Succeed())
			Expect(execute(path)).To(Succeed())
			Expect(stderr.String()).To(ContainSubstring("nothing to debug"))
		})
	})
})
