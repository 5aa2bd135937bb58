// Command anvil drives the build-graph core over a repository root:
// injecting a spec's transitive closure into a graph, computing cache
// keys, and inspecting/mutating the invalidator and artifact cache.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/panux/anvil/artifactcache"
	"github.com/panux/anvil/bootstrap"
	"github.com/panux/anvil/buildfile"
	"github.com/panux/anvil/cachekey"
	"github.com/panux/anvil/config"
	"github.com/panux/anvil/evaluator"
	"github.com/panux/anvil/graph"
	"github.com/panux/anvil/invalidator"
	"github.com/urfave/cli"
	"golang.org/x/tools/godoc/vfs"
)

func main() {
	app := cli.NewApp()
	app.Name = "anvil"
	app.Version = "0.1.0"
	app.Description = "polyglot monorepo build-graph core"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Value: "anvil.yaml",
			Usage: "path to the anvil configuration file",
		},
	}
	app.Commands = []cli.Command{
		graphCommand(),
		keyCommand(),
		invalidateCommand(),
		cacheCommand(),
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(ctx *cli.Context) (config.Config, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, "", err
	}
	path := ctx.GlobalString("config")
	if _, statErr := os.Stat(path); statErr != nil {
		return config.Default(wd), wd, nil
	}
	cfg, err := config.LoadFile(path, wd)
	return cfg, wd, err
}

func newConstructor(rootDir string) *graph.Constructor {
	fs := vfs.OS(rootDir)
	reg := bootstrap.NewRegistry(fs, rootDir)
	ev := evaluator.New(fs, reg)
	resolver := buildfile.NewResolver(fs, rootDir)
	return graph.NewConstructor(ev, resolver, reg)
}

func graphCommand() cli.Command {
	return cli.Command{
		Name:      "graph",
		Usage:     "inject a spec's transitive closure and dump the resulting graph as JSON",
		ArgsUsage: "<spec>",
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.NewExitError("expected exactly one spec argument", 64)
			}
			_, wd, err := loadConfig(ctx)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			c := newConstructor(wd)
			g := graph.New()
			if err := c.InjectSpecClosure(ctx.Args().Get(0), g); err != nil {
				return cli.NewExitError(err, 1)
			}

			out := map[string][]string{}
			for _, addr := range g.Addresses() {
				t, _ := g.Target(addr)
				deps := make([]string, len(t.Dependencies))
				for i, d := range t.Dependencies {
					deps[i] = d.String()
				}
				out[addr.String()] = deps
			}
			return json.NewEncoder(os.Stdout).Encode(out)
		},
	}
}

func keyCommand() cli.Command {
	return cli.Command{
		Name:      "key",
		Usage:     "compute the cache key for a spec",
		ArgsUsage: "<spec>",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "transitive", Usage: "fold in dependency hashes"},
		},
		Action: func(ctx *cli.Context) error {
			if ctx.NArg() != 1 {
				return cli.NewExitError("expected exactly one spec argument", 64)
			}
			cfg, wd, err := loadConfig(ctx)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			c := newConstructor(wd)
			g := graph.New()
			spec := ctx.Args().Get(0)
			if err := c.InjectSpecClosure(spec, g); err != nil {
				return cli.NewExitError(err, 1)
			}

			resolver := buildfile.NewResolver(vfs.OS(wd), wd)
			addr, err := resolver.Resolve(spec, nil)
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			target, ok := g.Target(addr)
			if !ok {
				return cli.NewExitError(fmt.Sprintf("no target at %s", addr), 1)
			}

			gen := cachekey.New(cfg.GeneratorVersion)
			key, err := gen.KeyForTarget(g, target, ctx.Bool("transitive"))
			if err != nil {
				return cli.NewExitError(err, 1)
			}
			fmt.Fprintf(os.Stdout, "%s %s\n", key.ID, key.Hash)
			return nil
		},
	}
}

func invalidateCommand() cli.Command {
	return cli.Command{
		Name:  "invalidate",
		Usage: "inspect or clear the build invalidator",
		Subcommands: []cli.Command{
			{
				Name:      "show",
				ArgsUsage: "<id>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return cli.NewExitError("expected exactly one id argument", 64)
					}
					cfg, _, err := loadConfig(ctx)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					inv := invalidator.New(cfg.InvalidatorRoot, cfg.GeneratorVersion)
					hash, ok, err := inv.ExistingHash(ctx.Args().Get(0))
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					if !ok {
						fmt.Fprintln(os.Stdout, "(absent)")
						return nil
					}
					fmt.Fprintln(os.Stdout, hash)
					return nil
				},
			},
			{
				Name: "clear",
				Action: func(ctx *cli.Context) error {
					cfg, _, err := loadConfig(ctx)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					inv := invalidator.New(cfg.InvalidatorRoot, cfg.GeneratorVersion)
					return inv.ForceInvalidateAll()
				},
			},
		},
	}
}

func cacheCommand() cli.Command {
	return cli.Command{
		Name:  "cache",
		Usage: "inspect or prune the local artifact cache",
		Subcommands: []cli.Command{
			{
				Name:      "has",
				ArgsUsage: "<id> <hash>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 2 {
						return cli.NewExitError("expected <id> <hash>", 64)
					}
					cfg, _, err := loadConfig(ctx)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					cache := artifactcache.New(cfg.CacheRoot, cfg.ArtifactRoot, cfg.Compress, cfg.ReadOnly)
					has, err := cache.Has(cachekey.CacheKey{ID: ctx.Args().Get(0), Hash: ctx.Args().Get(1)})
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					fmt.Fprintln(os.Stdout, strconv.FormatBool(has))
					return nil
				},
			},
			{
				Name:      "prune",
				ArgsUsage: "<age-hours>",
				Action: func(ctx *cli.Context) error {
					if ctx.NArg() != 1 {
						return cli.NewExitError("expected <age-hours>", 64)
					}
					ageHours, err := strconv.ParseFloat(ctx.Args().Get(0), 64)
					if err != nil {
						return cli.NewExitError(err, 64)
					}
					cfg, _, err := loadConfig(ctx)
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					cache := artifactcache.New(cfg.CacheRoot, cfg.ArtifactRoot, cfg.Compress, cfg.ReadOnly)
					return cache.Prune(ageHours)
				},
			},
		},
	}
}
