package main

import (
	"fmt"
	"os"

	"github.com/cg-saarland/GloBiE/asset/scene"
	"github.com/cg-saarland/GloBiE/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "globie"
	app.Usage = "compile triangle meshes into wide BVH layouts"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile a triangle mesh into a flattened wide BVH",
			Description: fmt.Sprintf(`
Parse triangles from a wavefront obj or glTF file, build a %d-wide BVH using
the surface area heuristic and pack it into flat node and leaf arrays. Each
leaf record stores up to %d triangles in structure-of-arrays form.

By default the output is a zstd compressed .bvh file placed next to the input.
Use --format zip to emit a gob encoded archive instead.`, scene.NodeWidth, scene.LeafWidth),
			ArgsUsage: "mesh_file1.obj mesh_file2.glb ...",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "min-leaf",
					Value: scene.LeafWidth / 2,
					Usage: "clusters with at most this many triangles become leaves",
				},
				cli.StringFlag{
					Name:  "out, o",
					Usage: "output filename; only valid for a single input",
				},
				cli.StringFlag{
					Name:  "format",
					Value: "bvh",
					Usage: "output format (bvh or zip)",
				},
			},
			Action: cmd.CompileMesh,
		},
		{
			Name:      "info",
			Usage:     "display statistics for a compiled BVH file",
			ArgsUsage: "file.bvh",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "verify",
					Usage: "check the structural invariants of the layout",
				},
			},
			Action: cmd.ShowBvhInfo,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
