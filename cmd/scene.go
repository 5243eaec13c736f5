package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/cg-saarland/GloBiE/asset/compiler"
	"github.com/cg-saarland/GloBiE/asset/mesh"
	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/asset/scene/reader"
	"github.com/cg-saarland/GloBiE/asset/scene/writer"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

type compileResult struct {
	input     string
	output    string
	triangles int
	nodes     int
	leaves    int
	elapsed   time.Duration
}

// Compile mesh files into flattened BVH files.
func CompileMesh(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing mesh file argument")
	}
	if ctx.String("out") != "" && ctx.NArg() != 1 {
		return errors.New("--out can only be used with a single mesh file")
	}

	format := strings.ToLower(ctx.String("format"))
	if format != "bvh" && format != "zip" {
		return fmt.Errorf("unsupported output format %q", format)
	}

	opts := compiler.Options{
		MinLeafItems: ctx.Int("min-leaf"),
	}

	results := make([]compileResult, 0, ctx.NArg())
	for idx := 0; idx < ctx.NArg(); idx++ {
		meshFile := ctx.Args().Get(idx)
		outFile := ctx.String("out")
		if outFile == "" {
			outFile = outputFilename(meshFile, format)
		}

		res, err := compileFile(meshFile, outFile, opts)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	displayCompileStats(results)
	return nil
}

func compileFile(meshFile, outFile string, opts compiler.Options) (compileResult, error) {
	logger.Noticef("parsing and compiling mesh: %s", meshFile)
	start := time.Now()

	vertices, err := reader.ReadMesh(meshFile)
	if err != nil {
		return compileResult{}, err
	}

	b := compiler.Compile(mesh.FromVertices(vertices), opts)
	logger.Infof("BVH information:\n%s", b.Stats())

	if err = writer.WriteBvh(b, outFile); err != nil {
		return compileResult{}, err
	}

	return compileResult{
		input:     meshFile,
		output:    outFile,
		triangles: len(vertices) / 3,
		nodes:     len(b.Nodes),
		leaves:    len(b.Leaves),
		elapsed:   time.Since(start),
	}, nil
}

// Replace the extension of a mesh filename with the one for the selected
// output format.
func outputFilename(meshFile, format string) string {
	return strings.TrimSuffix(meshFile, filepath.Ext(meshFile)) + "." + format
}

func displayCompileStats(results []compileResult) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Input", "Output", "Triangles", "Nodes", "Leaves", "Time"})

	var total time.Duration
	for _, res := range results {
		table.Append([]string{
			res.input,
			res.output,
			fmt.Sprintf("%d", res.triangles),
			fmt.Sprintf("%d", res.nodes),
			fmt.Sprintf("%d", res.leaves),
			res.elapsed.String(),
		})
		total += res.elapsed
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", total.String()})

	table.Render()
	logger.Noticef("compile statistics\n%s", buf.String())
}

// Display compiled BVH info.
func ShowBvhInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing compiled BVH file")
	}

	b, err := reader.ReadBvh(ctx.Args().First())
	if err != nil {
		return err
	}

	logger.Noticef("BVH information:\n%s", b.Stats())

	if ctx.Bool("verify") {
		if err = verify(b); err != nil {
			return err
		}
		logger.Notice("layout verified")
	}
	return nil
}

func verify(b *scene.Bvh) error {
	if err := b.Validate(b.TriangleCount()); err != nil {
		return fmt.Errorf("layout verification failed: %w", err)
	}
	return nil
}
